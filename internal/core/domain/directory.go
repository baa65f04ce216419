package domain

// Center is an academic center (faculty/school) of the campus.
type Center struct {
	ID      string
	Name    string
	Acronym string
}

// Course is a degree course offered by exactly one center.
type Course struct {
	ID       string
	Name     string
	CenterID string
}
