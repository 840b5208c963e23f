package model

// Counters are the summary figures stored alongside a mapper's beatmaps.
type Counters struct {
	RankedBeatmaps    int `json:"rankedBeatmaps"`
	RankedBeatmapsets int `json:"rankedBeatmapsets"`
	OwnBeatmapsets    int `json:"ownBeatmapsets"`
	GuestBeatmapsets  int `json:"guestBeatmapsets"`
	TotalGuestDiffs   int `json:"totalGuestDiffs"`
	OwnDifficulties   int `json:"ownDifficulties"`
}

// Mapper is the persisted record for one osu! user.
type Mapper struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Aliases  []string `json:"aliases,omitempty"`
	Country  string   `json:"country"`
	Counters
	Beatmaps    []Beatmap `json:"beatmaps"`
	LastUpdated string    `json:"lastUpdated,omitempty"`
}

// Profile is a Mapper plus the fields derived at load time.
type Profile struct {
	Mapper
	Beatmapsets          []Beatmapset `json:"beatmapsets"`
	MostRecentRankedDate string       `json:"mostRecentRankedDate,omitempty"`
}

// Dataset is the consolidated document written by the ingestion command and
// served to the presentation path.
type Dataset struct {
	LastUpdated      string   `json:"lastUpdated"`
	TotalMappers     int      `json:"totalMappers"`
	TotalBeatmaps    int      `json:"totalBeatmaps"`
	TotalBeatmapsets int      `json:"totalBeatmapsets"`
	Mappers          []Mapper `json:"mappers"`
}

// MapperState records when a mapper's beatmaps were last fetched.
type MapperState struct {
	LastBeatmapCheck string `json:"lastBeatmapCheck"`
}

// FetchState is the ingestion bookkeeping file used for incremental runs.
type FetchState struct {
	LastChecked   string                 `json:"lastChecked,omitempty"`
	LastFullScan  string                 `json:"lastFullScan,omitempty"`
	LastRunID     string                 `json:"lastRunId,omitempty"`
	TotalBeatmaps int                    `json:"totalBeatmaps"`
	MapperStates  map[string]MapperState `json:"mapperStates"`
}

// NewFetchState returns an empty state with an initialized map.
func NewFetchState() FetchState {
	return FetchState{MapperStates: make(map[string]MapperState)}
}
