package store

// DefaultDataset is the hard-coded state the store falls back to when the
// primary file is missing or unreadable, and the state Reset restores:
// the founding roster, an eight-week season, and no submissions or
// judgments yet.
func DefaultDataset() *Dataset {
	return &Dataset{
		Members: []Member{
			{ID: "mallory-wren", Name: "Mallory Wren"},
			{ID: "jesse-finch", Name: "Jesse Finch"},
			{ID: "priya-starling", Name: "Priya Starling"},
			{ID: "tomas-heron", Name: "Tomas Heron"},
		},
		Schedule: []Week{
			{Number: 1, Theme: "Backyard Birds", Status: WeekStatusActive},
			{Number: 2, Theme: "Raptors", Status: WeekStatusUpcoming},
			{Number: 3, Theme: "Waterfowl", Status: WeekStatusUpcoming},
			{Number: 4, Theme: "Songbirds", Status: WeekStatusUpcoming},
			{Number: 5, Theme: "Shorebirds", Status: WeekStatusUpcoming},
			{Number: 6, Theme: "Owls", Status: WeekStatusUpcoming},
			{Number: 7, Theme: "Woodpeckers", Status: WeekStatusUpcoming},
			{Number: 8, Theme: "Photographer's Choice", Status: WeekStatusUpcoming},
		},
		Submissions: []Submission{},
		Judgments:   []Judgment{},
	}
}
