package lock

// Question is an entry of the fixed security-question catalog. Only the id
// is persisted alongside the hashed answer.
type Question struct {
	ID    string
	Label string
}

var questions = []Question{
	{ID: "pet", Label: "What was the name of your first pet?"},
	{ID: "city", Label: "In which city were you born?"},
	{ID: "mother", Label: "What is your mother's name?"},
	{ID: "school", Label: "What was the name of your first school?"},
	{ID: "food", Label: "What is your favourite food?"},
}

// Questions returns the catalog. The slice is a copy; callers may reorder it.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// QuestionByID looks up a catalog entry, reporting whether it exists.
func QuestionByID(id string) (Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
