package models

// JobOpening represents a job posting as indexed by the scoring collaborator
type JobOpening struct {
	Key       string     `json:"key"`
	Reference string     `json:"reference"`
	Name      string     `json:"name"`
	Summary   string     `json:"summary"`
	Skills    []JobSkill `json:"skills,omitempty"`
}

// JobSkill is a named skill attached to a job opening or profile
type JobSkill struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ScoredProfile is a candidate profile with the score computed by the scoring
// collaborator. The score is an opaque input; this service never fabricates it.
type ScoredProfile struct {
	Key         string              `json:"key"`
	Reference   string              `json:"reference"`
	Info        ProfileInfo         `json:"info"`
	Score       float64             `json:"score"`
	Skills      []JobSkill          `json:"skills,omitempty"`
	Experiences []ProfileExperience `json:"experiences,omitempty"`
	Educations  []ProfileEducation  `json:"educations,omitempty"`
}

// ProfileInfo carries the contact details of a scored profile
type ProfileInfo struct {
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ProfileExperience is one work history entry on a profile
type ProfileExperience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description,omitempty"`
}

// ProfileEducation is one education entry on a profile
type ProfileEducation struct {
	Title  string `json:"title"`
	School string `json:"school"`
}
