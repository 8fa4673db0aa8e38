package radarr

import "strings"

// Availability mirrors Radarr's minimumAvailability / movie status values.
type Availability string

const (
	AvailabilityAnnounced Availability = "announced"
	AvailabilityInCinemas Availability = "inCinemas"
	AvailabilityReleased  Availability = "released"
	AvailabilityDeleted   Availability = "deleted"
)

// ParseAvailability folds Radarr's status strings into the closed enum.
// Unknown values map to announced, the most conservative state.
func ParseAvailability(value string) Availability {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "incinemas", "in_cinemas":
		return AvailabilityInCinemas
	case "released":
		return AvailabilityReleased
	case "deleted":
		return AvailabilityDeleted
	default:
		return AvailabilityAnnounced
	}
}

// DisplayStatus is the user-facing state of a library movie, derived from
// file presence plus availability rather than compared as raw strings.
type DisplayStatus string

const (
	StatusDownloaded DisplayStatus = "downloaded"
	StatusMissing    DisplayStatus = "missing"
	StatusInCinemas  DisplayStatus = "inCinemas"
	StatusPending    DisplayStatus = "pending"
)

// DeriveDisplayStatus maps file presence and availability onto the display
// enum. A file on disk always wins; a released movie with no file is
// missing; a movie still in cinemas shows as such; everything earlier in
// its lifecycle is pending.
func DeriveDisplayStatus(hasFile bool, availability Availability) DisplayStatus {
	if hasFile {
		return StatusDownloaded
	}
	switch availability {
	case AvailabilityReleased, AvailabilityDeleted:
		return StatusMissing
	case AvailabilityInCinemas:
		return StatusInCinemas
	default:
		return StatusPending
	}
}

// Movie is a library entry as reported by Radarr.
type Movie struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Year             int      `json:"year"`
	TMDBID           int64    `json:"tmdbId"`
	Status           string   `json:"status"`
	HasFile          bool     `json:"hasFile"`
	Monitored        bool     `json:"monitored"`
	Genres           []string `json:"genres"`
	Certification    string   `json:"certification"`
	QualityProfileID int64    `json:"qualityProfileId"`
	RootFolderPath   string   `json:"rootFolderPath"`
	Added            string   `json:"added"`
}

// Availability returns the movie's status as the closed enum.
func (m Movie) Availability() Availability {
	return ParseAvailability(m.Status)
}

// DisplayStatus derives the user-facing state for this movie.
func (m Movie) DisplayStatus() DisplayStatus {
	return DeriveDisplayStatus(m.HasFile, m.Availability())
}

// Candidate is a title-search hit eligible for adding to the library.
type Candidate struct {
	TMDBID        int64    `json:"tmdbId"`
	Title         string   `json:"title"`
	Year          int      `json:"year"`
	Genres        []string `json:"genres"`
	Certification string   `json:"certification"`
}

// QualityProfile is a Radarr quality profile reference.
type QualityProfile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RootFolder is a storage location Radarr advertises as usable.
type RootFolder struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	FreeSpace int64  `json:"freeSpace"`
}

// AddRequest carries everything needed to add one candidate.
type AddRequest struct {
	Candidate           Candidate
	QualityProfileID    int64
	RootFolder          string
	Monitored           bool
	MonitorOption       string
	MinimumAvailability string
	SearchNow           bool
}
