package coach

import (
	"errors"
	"log/slog"
	"time"

	"github.com/myrjola/formcoach/internal/sqlite"
)

const dateFormat = time.DateOnly
const timestampFormat = "2006-01-02T15:04:05.000Z"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// baseRepository carries what every repository needs.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{db: db, logger: logger}
}

// repository bundles the per-aggregate repositories.
type repository struct {
	loads           *loadRepository
	wellness        *wellnessRepository
	exposures       *exposureRepository
	progression     *progressionRepository
	events          *eventRepository
	curve           *curveRepository
	profile         *profileRepository
	recommendations *recommendationRepository
}

func newRepository(db *sqlite.Database, logger *slog.Logger) *repository {
	base := newBaseRepository(db, logger)
	return &repository{
		loads:           &loadRepository{baseRepository: base},
		wellness:        &wellnessRepository{baseRepository: base},
		exposures:       &exposureRepository{baseRepository: base},
		progression:     &progressionRepository{baseRepository: base},
		events:          &eventRepository{baseRepository: base},
		curve:           &curveRepository{baseRepository: base},
		profile:         &profileRepository{baseRepository: base},
		recommendations: &recommendationRepository{baseRepository: base},
	}
}

func formatDate(t time.Time) string {
	return t.Format(dateFormat)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateFormat, s)
}
