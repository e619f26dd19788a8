// Package metadata post-processes the static company/tag lookup data
// bundled with the external CLI.
package metadata

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sort"
	"strings"

	appErr "leetbridge/pkg/errors"
	"leetbridge/pkg/utils/logger"
)

// Mapping is the decoded bundled data file: problem slug to company and
// tag lists.
type Mapping struct {
	Companies map[string][]string `json:"companies"`
	Tags      map[string][]string `json:"tags"`
}

// Index is the inverted view used by the adapter: company/tag name to
// problem slugs. Lookup keys are case-insensitive.
type Index struct {
	byCompany map[string][]string
	byTag     map[string][]string
	companies []string
	tags      []string
}

// Load reads and decodes the bundled data file. The file is JSON, or a
// CommonJS module wrapping a single JSON object.
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Mapping{}, appErr.EnvironmentError(appErr.MetadataNotFound, path)
		}
		return Mapping{}, appErr.Wrap(err, appErr.MetadataParseFailed)
	}
	return Decode(data)
}

// Decode parses raw data file content into a Mapping.
func Decode(data []byte) (Mapping, error) {
	payload, err := stripModuleWrapper(data)
	if err != nil {
		return Mapping{}, err
	}
	var m Mapping
	if err := json.Unmarshal(payload, &m); err != nil {
		return Mapping{}, appErr.Wrapf(err, appErr.MetadataParseFailed, "decode metadata failed: %v", err)
	}
	if m.Companies == nil && m.Tags == nil {
		return Mapping{}, appErr.New(appErr.MetadataParseFailed).WithMessage("metadata has neither companies nor tags")
	}
	return m, nil
}

// stripModuleWrapper removes a `module.exports = {...};` shell, leaving
// the object literal.
func stripModuleWrapper(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, appErr.New(appErr.MetadataParseFailed).WithMessage("metadata file is empty")
	}
	if trimmed[0] == '{' {
		return trimmed, nil
	}
	start := bytes.IndexByte(trimmed, '{')
	end := bytes.LastIndexByte(trimmed, '}')
	if start < 0 || end < start {
		return nil, appErr.New(appErr.MetadataParseFailed).WithMessage("no object literal in metadata file")
	}
	return trimmed[start : end+1], nil
}

// BuildIndex inverts a Mapping into per-company and per-tag slug lists.
func BuildIndex(m Mapping) *Index {
	idx := &Index{
		byCompany: invert(m.Companies),
		byTag:     invert(m.Tags),
	}
	idx.companies = sortedKeys(idx.byCompany)
	idx.tags = sortedKeys(idx.byTag)
	return idx
}

func invert(direct map[string][]string) map[string][]string {
	inverted := make(map[string][]string)
	for slug, names := range direct {
		for _, name := range names {
			key := strings.ToLower(strings.TrimSpace(name))
			if key == "" {
				continue
			}
			inverted[key] = append(inverted[key], slug)
		}
	}
	for key, slugs := range inverted {
		sort.Strings(slugs)
		inverted[key] = dedupSorted(slugs)
	}
	return inverted
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupSorted(list []string) []string {
	result := list[:0]
	var prev string
	for i, item := range list {
		if i > 0 && item == prev {
			continue
		}
		result = append(result, item)
		prev = item
	}
	return result
}

// Company returns problem slugs for a company name.
func (idx *Index) Company(name string) ([]string, error) {
	slugs, ok := idx.byCompany[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, appErr.Newf(appErr.TagNotFound, "company %q not found", name)
	}
	return slugs, nil
}

// Tag returns problem slugs for a topic tag.
func (idx *Index) Tag(name string) ([]string, error) {
	slugs, ok := idx.byTag[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, appErr.Newf(appErr.TagNotFound, "tag %q not found", name)
	}
	return slugs, nil
}

// Companies returns all known company keys, sorted.
func (idx *Index) Companies() []string {
	return idx.companies
}

// Tags returns all known tag keys, sorted.
func (idx *Index) Tags() []string {
	return idx.tags
}

// ProblemLevel pairs a problem id with its difficulty label from the
// listing output.
type ProblemLevel struct {
	ID    int
	Level string
}

// GroupByDifficulty buckets problem ids by normalized difficulty label.
func GroupByDifficulty(entries []ProblemLevel) map[string][]int {
	grouped := make(map[string][]int)
	for _, entry := range entries {
		level := normalizeLevel(entry.Level)
		if level == "" {
			continue
		}
		grouped[level] = append(grouped[level], entry.ID)
	}
	for level, ids := range grouped {
		sort.Ints(ids)
		grouped[level] = ids
	}
	return grouped
}

// normalizeLevel maps "EASY", "easy" and friends onto "Easy".
func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return ""
	}
	return strings.ToUpper(level[:1]) + level[1:]
}

// LoadIndexed loads the data file through the snapshot cache: the file's
// digest keys a compressed snapshot of the decoded mapping, skipping the
// module-wrapper parse on repeat loads.
func LoadIndexed(ctx context.Context, path string, cache *SnapshotCache) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, appErr.EnvironmentError(appErr.MetadataNotFound, path)
		}
		return nil, appErr.Wrap(err, appErr.MetadataParseFailed)
	}
	sum := sha256.Sum256(raw)
	key := hex.EncodeToString(sum[:])

	if cache != nil {
		if payload, ok := cache.Get(key); ok {
			var m Mapping
			if err := json.Unmarshal(payload, &m); err == nil {
				logger.Debugf(ctx, "metadata snapshot hit for %s", key[:12])
				return BuildIndex(m), nil
			}
			// stale or damaged snapshot, fall through to a fresh parse
			cache.Remove(key)
		}
	}

	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		if payload, err := json.Marshal(m); err == nil {
			if err := cache.Put(key, payload); err != nil {
				logger.Warnf(ctx, "metadata snapshot store failed: %v", err)
			}
		}
	}
	return BuildIndex(m), nil
}
