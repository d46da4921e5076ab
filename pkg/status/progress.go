package status

// Progress is returned as a struct because we may add more to it later.
// It is designed for wrappers (like a GUI) to be able to summarize the
// current status without parsing log output.
type Progress struct {
	CurrentState State  // state of the table being worked on
	Table        string // qualified name of that table
	Summary      string // text based representation, i.e. "2/5 tables, 140 statements"
}
