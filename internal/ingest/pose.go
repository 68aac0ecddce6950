package ingest

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/admet-cli/internal/model"
)

const vinaRemark = "REMARK VINA RESULT:"

// Pose is one docked pose file and the docking score read from it.
type Pose struct {
	Identifier   string
	Path         string
	DockingScore model.Number
	// Defaulted is set when the file had no Vina result line.
	Defaulted bool
}

// ParseDockingScore returns the affinity from the first "REMARK VINA
// RESULT:" line of a PDB stream. ok is false when no such line parses.
func ParseDockingScore(r io.Reader) (score float64, ok bool, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, vinaRemark) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return 0, false, nil
		}
		n := model.ParseNumber(fields[3])
		return n.Value, n.Valid, nil
	}
	if err := sc.Err(); err != nil {
		return 0, false, eris.Wrap(err, "ingest: scan pose")
	}
	return 0, false, nil
}

// ScanPoses reads every file in dir matching glob, in file-name order. A
// file without a Vina result gets defaultScore.
func ScanPoses(ctx context.Context, dir, glob string, defaultScore float64, concurrency int) ([]Pose, error) {
	paths, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: glob %s", glob)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	poses := make([]Pose, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			p, err := readPose(path, defaultScore)
			if err != nil {
				return err
			}
			poses[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "ingest: scan poses")
	}

	zap.L().Info("ingest: poses scanned",
		zap.String("dir", dir),
		zap.Int("count", len(poses)),
	)
	return poses, nil
}

func readPose(path string, defaultScore float64) (Pose, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pose{}, eris.Wrapf(err, "ingest: open pose %s", path)
	}
	defer f.Close() //nolint:errcheck

	p := Pose{Identifier: filepath.Base(path), Path: path}
	score, ok, err := ParseDockingScore(f)
	if err != nil {
		return Pose{}, eris.Wrapf(err, "ingest: read pose %s", path)
	}
	if !ok {
		score = defaultScore
		p.Defaulted = true
		zap.L().Warn("ingest: no vina result, using default docking score",
			zap.String("identifier", p.Identifier),
			zap.Float64("docking_score", defaultScore),
		)
	}
	p.DockingScore = model.Num(score)
	return p, nil
}
