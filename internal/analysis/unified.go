package analysis

import (
	"errors"
	"sort"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/park285/chess-recap/internal/domain"
	"github.com/park285/chess-recap/internal/obslog"
	"github.com/park285/chess-recap/internal/replay"
	"github.com/park285/chess-recap/internal/tagcat"
)

var ErrNoUsername = errors.New("analysis: username required")

// Detector families gated by game outcome before the replay starts.
var (
	mateGated = nameSet(
		"smothered_mate", "king_mate", "castle_mate", "pawn_mate",
		"knight_promotion_mate", "promotion_mate", "quickest_mate",
		"en_passant_mate", "back_rank_mate", "knight_bishop_mate", "king_walk",
	)
	winGated = nameSet(
		"queen_sacrifice", "knight_fork", "rook_sacrifice", "quickest_mate",
		"biggest_comeback", "clutch_win", "best_game", "longest_game",
		"king_walk", "windmill",
	)
	drawGated = nameSet("stalemate")
)

func nameSet(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Analyzer drives the full detector catalog over a batch of games for one
// subject player. Not safe for concurrent use; run one Analyzer per batch.
type Analyzer struct {
	username  string
	detectors []Detector
	cat       *tagcat.Catalog
	log       *zap.Logger
}

// New builds a batch analyzer for the given subject. The catalog may be nil,
// in which case raw detector keys are used as tags.
func New(username string, cat *tagcat.Catalog) (*Analyzer, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrNoUsername
	}
	return &Analyzer{
		username:  username,
		detectors: NewDetectors(),
		cat:       cat,
		log:       obslog.L().Named("analysis"),
	}, nil
}

// Run feeds every game through the detector catalog and returns the
// link-to-tags map plus the links of games that failed to replay. Games the
// subject did not play and hyper-bullet games (base time under a minute)
// are skipped. A detector panic is contained to that detector and game.
func (a *Analyzer) Run(games []*domain.GameRecord) (map[string][]string, []string) {
	var failed []string

	for _, rec := range games {
		subjectWhite, played := rec.PlayedBy(a.username)
		if !played {
			continue
		}
		if base := rec.BaseTimeSeconds(); base >= 0 && base < 60 {
			continue
		}

		plys, _, err := replay.Game(rec)
		if err != nil {
			a.log.Warn("game replay failed",
				zap.String("link", rec.Link), zap.Error(err))
			if rec.Link != "" {
				failed = append(failed, rec.Link)
			}
			continue
		}

		a.runGame(rec, subjectWhite, plys)
	}

	return a.collectTags(), failed
}

func (a *Analyzer) runGame(rec *domain.GameRecord, subjectWhite bool, plys []replay.Ply) {
	// Detectors that key off the final standard notation need it even when
	// the record arrived with coordinate moves only.
	if len(rec.Moves) != len(plys) {
		clone := *rec
		clone.Moves = make([]string, len(plys))
		for i, p := range plys {
			clone.Moves[i] = p.SAN
		}
		rec = &clone
	}

	hasCheckmate := len(rec.Moves) > 0 && strings.Contains(rec.Moves[len(rec.Moves)-1], "#")
	subjectWon := (rec.Result == "1-0" && subjectWhite) || (rec.Result == "0-1" && !subjectWhite)
	isDraw := rec.Result == "1/2-1/2"

	for _, det := range a.detectors {
		a.safely(det.Name(), rec.Link, func() { det.StartGame(rec, subjectWhite) })
	}

	active := a.detectors[:0:0]
	for _, det := range a.detectors {
		name := det.Name()
		if _, ok := mateGated[name]; ok && !hasCheckmate {
			continue
		}
		if _, ok := winGated[name]; ok && !subjectWon {
			continue
		}
		if _, ok := drawGated[name]; ok && !isDraw {
			continue
		}
		active = append(active, det)
	}

	subjectColor := colorFor(subjectWhite)
	for i := range plys {
		ply := &plys[i]
		isSubject := (ply.Before.Turn() == subjectColor)
		ctx := &MoveContext{
			Move:           ply.Move,
			Ply:            ply.Index,
			Before:         ply.Before,
			SAN:            ply.SAN,
			IsSubjectMove:  isSubject,
			IsOpponentMove: !isSubject,
			SubjectColor:   subjectColor,
			Game:           rec,
		}
		for _, det := range active {
			a.safely(det.Name(), rec.Link, func() { det.ProcessMove(ctx) })
		}
	}

	for _, det := range a.detectors {
		a.safely(det.Name(), rec.Link, func() { det.FinishGame() })
	}
}

// safely runs one detector call, converting a panic into a warning so a bad
// game cannot take the whole batch down.
func (a *Analyzer) safely(name, link string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn("detector fault",
				zap.String("detector", name),
				zap.String("link", link),
				zap.Any("panic", r))
		}
	}()
	fn()
}

func (a *Analyzer) collectTags() map[string][]string {
	tags := make(map[string][]string)
	for _, det := range a.detectors {
		label := det.Name()
		if a.cat != nil {
			label = a.cat.LabelOr(label)
		}
		for _, link := range det.MatchedLinks() {
			if link == "" {
				continue
			}
			tags[link] = append(tags[link], label)
		}
	}
	for link, list := range tags {
		tags[link] = dedupeSorted(list)
	}
	return tags
}

func dedupeSorted(list []string) []string {
	if len(list) < 2 {
		return list
	}
	sort.Strings(list)
	out := list[:1]
	for _, s := range list[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

func colorFor(white bool) nchess.Color {
	if white {
		return nchess.White
	}
	return nchess.Black
}
