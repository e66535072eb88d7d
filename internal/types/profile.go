package types

// CandidateProfile is the structured profile supplied by the (out-of-scope)
// ingestion layer. Every text item carries the source ids of the artifacts
// that back it.
type CandidateProfile struct {
	Identity   Identity     `json:"identity"`
	Summary    string       `json:"summary,omitempty"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education,omitempty"`
	Projects   []Project    `json:"projects,omitempty"`
	Skills     []Skill      `json:"skills,omitempty"`
}

// Identity holds the candidate's contact details.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Experience is one work-experience entry owning a set of evidence bullets.
type Experience struct {
	Company   string   `json:"company"`
	Title     string   `json:"title"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
	Bullets   []Bullet `json:"bullets"`
}

// Bullet is a single evidence statement inside an experience or project entry.
type Bullet struct {
	Text      string   `json:"text"`
	SourceIDs []string `json:"source_ids"`
}

// Education is a single education entry.
type Education struct {
	Institution string   `json:"institution"`
	Degree      string   `json:"degree,omitempty"`
	Year        string   `json:"year,omitempty"`
	SourceIDs   []string `json:"source_ids"`
}

// Project is a standalone project entry with its own evidence bullets.
type Project struct {
	Name    string   `json:"name"`
	Bullets []Bullet `json:"bullets"`
}

// Skill is a named skill backed by one or more sources.
type Skill struct {
	Name      string   `json:"name"`
	SourceIDs []string `json:"source_ids"`
}
