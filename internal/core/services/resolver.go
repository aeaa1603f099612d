package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
	"github.com/custodia-labs/opus/internal/logger"
)

// File format tiers, highest preferred.
const (
	tierUnusable = -1
	tierAnyAudio = 0
	tierLossless = 1
	tierOgg      = 2
	tierMP3      = 3
)

// audioExtensions are filename suffixes treated as audio when the declared
// format is not recognised.
var audioExtensions = []string{".mp3", ".ogg", ".wav", ".flac"}

// SourceResolver finds a playable audio file for a track in the archive and
// downloads it to scratch storage.
type SourceResolver struct {
	archive    driven.Archive
	scratchDir string
	rows       int
}

// NewSourceResolver creates a resolver. An empty scratchDir uses os.TempDir.
// A nil archive makes every resolution return domain.ErrSourceNotFound.
func NewSourceResolver(archive driven.Archive, scratchDir string, rows int) *SourceResolver {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	if rows <= 0 {
		rows = domain.DefaultArchiveRows
	}
	return &SourceResolver{
		archive:    archive,
		scratchDir: scratchDir,
		rows:       rows,
	}
}

// Resolve searches the archive for composer and title and downloads the best
// file of the first hit that has one. The returned path is a scratch file
// named after trackKey, the archive identifier and the original filename.
//
// Every failure, including archive errors, returns domain.ErrSourceNotFound.
func (r *SourceResolver) Resolve(ctx context.Context, composer, title, trackKey string) (string, error) {
	if r.archive == nil {
		return "", domain.ErrSourceNotFound
	}

	query := BuildArchiveQuery(title, composer)
	logger.Info("Searching archive for: %s - %s", composer, title)
	logger.Debug("Archive query: %s", query)

	hits, err := r.archive.Search(ctx, query, r.rows)
	if err != nil {
		logger.Warn("Archive search failed for %s - %s: %v", composer, title, err)
		return "", fmt.Errorf("%w: %w", domain.ErrSourceNotFound, err)
	}
	if len(hits) == 0 {
		logger.Info("No archive results for %s - %s", composer, title)
		return "", domain.ErrSourceNotFound
	}

	for _, hit := range hits {
		if hit.Identifier == "" {
			continue
		}

		files, err := r.archive.Metadata(ctx, hit.Identifier)
		if err != nil {
			logger.Debug("Skipping %s: metadata failed: %v", hit.Identifier, err)
			continue
		}

		fileName, ok := SelectAudioFile(files)
		if !ok {
			continue
		}

		localPath, err := r.download(ctx, trackKey, hit.Identifier, fileName)
		if err != nil {
			logger.Warn("Archive download failed for %s/%s: %v", hit.Identifier, fileName, err)
			return "", fmt.Errorf("%w: %w", domain.ErrSourceNotFound, err)
		}
		logger.Info("Saved archive audio to %s", localPath)
		return localPath, nil
	}

	return "", domain.ErrSourceNotFound
}

// download streams one archive file into the scratch directory.
// A partial file is removed on failure.
func (r *SourceResolver) download(ctx context.Context, trackKey, identifier, fileName string) (string, error) {
	localPath := filepath.Join(r.scratchDir, ScratchFileName(trackKey, identifier, fileName))

	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}

	dlErr := r.archive.Download(ctx, identifier, fileName, out)
	closeErr := out.Close()
	if err := errors.Join(dlErr, closeErr); err != nil {
		os.Remove(localPath) //nolint:errcheck // best effort cleanup
		return "", err
	}
	return localPath, nil
}

// BuildArchiveQuery builds the loose title/creator query. Each field matches
// either its full value or a shortened form: the title before its first
// colon and the composer's first word. Quotes and backslashes inside a field
// are escaped so each value stays a single phrase.
func BuildArchiveQuery(title, composer string) string {
	shortTitle, _, _ := strings.Cut(title, ":")

	shortComposer := composer
	if fields := strings.Fields(composer); len(fields) > 0 {
		shortComposer = fields[0]
	}

	return fmt.Sprintf(`title:("%s" OR "%s") AND creator:("%s" OR "%s")`,
		escapePhrase(title), escapePhrase(shortTitle), escapePhrase(composer), escapePhrase(shortComposer))
}

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapePhrase(s string) string {
	return phraseEscaper.Replace(s)
}

// ScratchFileName composes the local name for a downloaded file so that
// concurrent downloads for different tracks or items never collide.
// Path separators in the key or identifier are replaced so the file always
// lands directly in the scratch directory.
func ScratchFileName(trackKey, identifier, fileName string) string {
	return fmt.Sprintf("%s_%s_%s", pathSafe(trackKey), pathSafe(identifier), path.Base(fileName))
}

func pathSafe(s string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(s)
}

// FormatTier ranks one archive file. Higher is better; tierUnusable marks
// files that are not audio.
func FormatTier(file domain.ArchiveFile) int {
	format := strings.ToLower(file.Format)
	name := strings.ToLower(file.Name)

	switch {
	case format == "mp3" || format == "mpeg":
		return tierMP3
	case strings.Contains(format, "ogg"):
		return tierOgg
	case format == "wav" || format == "flac" || format == "wave":
		return tierLossless
	case strings.Contains(format, "audio") || hasAudioExtension(name):
		return tierAnyAudio
	default:
		return tierUnusable
	}
}

func hasAudioExtension(name string) bool {
	for _, ext := range audioExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

type rankedFile struct {
	tier int
	name string
}

// SelectAudioFile picks the file with the highest tier. Files in the same
// tier are ordered by name descending and the first is taken; the order is
// arbitrary and carries no quality signal.
func SelectAudioFile(files []domain.ArchiveFile) (string, bool) {
	candidates := make([]rankedFile, 0, len(files))
	for _, f := range files {
		if tier := FormatTier(f); tier != tierUnusable {
			candidates = append(candidates, rankedFile{tier: tier, name: f.Name})
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].tier != candidates[j].tier {
			return candidates[i].tier > candidates[j].tier
		}
		return candidates[i].name > candidates[j].name
	})
	return candidates[0].name, true
}
