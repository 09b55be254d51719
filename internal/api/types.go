package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Mission describes a mission in a transport-friendly format.
type Mission struct {
	Slug      string   `json:"slug"`
	Name      string   `json:"name"`
	StartDate string   `json:"startDate"`
	Active    bool     `json:"active"`
	WikiURL   string   `json:"wikiUrl,omitempty"`
	Progress  Progress `json:"progress"`
}

// Progress summarizes cleaning progress for a mission.
type Progress struct {
	Pages    int  `json:"pages"`
	Cleaned  int  `json:"cleaned"`
	Approved int  `json:"approved"`
	Done     bool `json:"done"`
}

// Page carries a page's derived current text together with its lock state.
type Page struct {
	Number      int    `json:"number"`
	Text        string `json:"text"`
	Approved    bool   `json:"approved"`
	LockedBy    string `json:"lockedBy,omitempty"`
	LockExpires string `json:"lockExpires,omitempty"`
}

// NextPage is the routing result: a claimed page, or done when the cleaner
// has no remaining work in the mission.
type NextPage struct {
	Done bool  `json:"done"`
	Page *Page `json:"page,omitempty"`
}

// Revision is one append-only edit of a page.
type Revision struct {
	Cleaner   string `json:"cleaner"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Cleaner summarizes a volunteer's contribution counts.
type Cleaner struct {
	Name          string `json:"name"`
	PagesCleaned  int    `json:"pagesCleaned"`
	PagesApproved int    `json:"pagesApproved"`
	Score         int    `json:"score"`
}

// SubmitRevision is the request body for committing a page edit.
type SubmitRevision struct {
	Text string `json:"text"`
}

// RevisionConflict is returned when a commit fails on an expired or stolen
// lock. The submitted text is echoed back so the client can preserve it.
type RevisionConflict struct {
	Error string `json:"error"`
	Text  string `json:"text"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	DatabasePath string `json:"databasePath"`
	LockFilePath string `json:"lockFilePath"`
	Missions     int    `json:"missions"`
}

// MissionListResponse wraps a collection of missions.
type MissionListResponse struct {
	Missions []Mission `json:"missions"`
}

// MissionResponse wraps a single mission.
type MissionResponse struct {
	Mission Mission `json:"mission"`
}

// PageResponse wraps a single page.
type PageResponse struct {
	Page Page `json:"page"`
}

// RevisionListResponse wraps a page's revision history.
type RevisionListResponse struct {
	Revisions []Revision `json:"revisions"`
}

// CleanerListResponse wraps the cleaner leaderboard.
type CleanerListResponse struct {
	Cleaners []Cleaner `json:"cleaners"`
}
