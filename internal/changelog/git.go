package changelog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// DefaultCount is how many commits are read when the caller does not say.
	DefaultCount = 5

	fieldSeparator = "||"
	logFormat      = "--pretty=format:%s" + fieldSeparator + "%cd" + fieldSeparator + "%an"
	dateFormat     = "--date=format:%Y-%m-%d %H:%M:%S"
)

// Collector reads the most recent commits of one repository.
type Collector struct {
	repoPath string
	runner   CommandRunner
	log      zerolog.Logger
}

// NewCollector creates a Collector that shells out to git.
func NewCollector(repoPath string, log zerolog.Logger) *Collector {
	return NewCollectorWithRunner(repoPath, NewExecRunner(), log)
}

// NewCollectorWithRunner creates a Collector with a custom CommandRunner.
func NewCollectorWithRunner(repoPath string, runner CommandRunner, log zerolog.Logger) *Collector {
	return &Collector{
		repoPath: repoPath,
		runner:   runner,
		log:      log,
	}
}

// RepoPath returns the repository the collector reads from.
func (c *Collector) RepoPath() string { return c.repoPath }

// Recent returns up to count commits, newest first. A non-positive count
// falls back to DefaultCount.
func (c *Collector) Recent(ctx context.Context, count int) ([]ChangeRecord, error) {
	if c.repoPath == "" {
		return nil, errors.New("changelog: repository path is required")
	}
	if count <= 0 {
		count = DefaultCount
	}

	out, err := c.runner.Output(ctx, "git",
		"-C", c.repoPath,
		"log",
		fmt.Sprintf("-%d", count),
		logFormat,
		dateFormat,
	)
	if err != nil {
		return nil, fmt.Errorf("changelog: git log: %w", err)
	}

	records, skipped := ParseLog(out)
	if skipped > 0 {
		c.log.Warn().
			Int("skipped", skipped).
			Str("repo", c.repoPath).
			Msg("skipped malformed git log lines")
	}
	c.log.Debug().
		Int("records", len(records)).
		Str("repo", c.repoPath).
		Msg("collected commits")

	return records, nil
}

// ParseLog splits git log output produced with the collector's format into
// records. Lines that do not have exactly three fields are skipped and
// counted.
func ParseLog(out string) ([]ChangeRecord, int) {
	var (
		records []ChangeRecord
		skipped int
	)
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, fieldSeparator)
		if len(parts) != 3 {
			skipped++
			continue
		}
		records = append(records, ChangeRecord{
			Summary:   strings.TrimSpace(parts[0]),
			Timestamp: strings.TrimSpace(parts[1]),
			Author:    strings.TrimSpace(parts[2]),
		})
	}
	return records, skipped
}
