package session

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/archetype"
)

// ErrNotFound reports an unknown session or version.
var ErrNotFound = errors.New("session: not found")

// #region record
// Record is a versioned snapshot of a session's smoothed archetype vector.
type Record struct {
	VersionID      string                    `json:"versionId"`
	ParentID       string                    `json:"parentId,omitempty"`
	SessionID      string                    `json:"sessionId"`
	Vector         archetype.Vector          `json:"vector"`
	Classification *archetype.Classification `json:"classification,omitempty"`
	CreatedAt      time.Time                 `json:"createdAt"`
}

// #endregion record

// #region summary
// Summary describes one session's active version.
type Summary struct {
	SessionID string    `json:"sessionId"`
	VersionID string    `json:"versionId"`
	Versions  int       `json:"versions"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// #endregion summary
