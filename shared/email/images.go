package email

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var wordPattern = regexp.MustCompile(`\w+`)
var leadingJunkPattern = regexp.MustCompile(`^[\d._\s\-]+`)
var delimiterPattern = regexp.MustCompile(`[\s_\-]+`)

// SelectImages picks up to maxImages files from imageDir, scoring each
// filename's keywords against the email body and company name. Ties and
// zero-score fills fall back to filename order, so the same inputs always
// produce the same selection.
func SelectImages(imageDir, emailBody, companyName string, maxImages int) ([]string, error) {
	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory %s: %w", imageDir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			candidates = append(candidates, entry.Name())
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Strings(candidates)

	contextWords := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(emailBody+" "+companyName), -1) {
		contextWords[w] = true
	}

	type scored struct {
		name  string
		score int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, name := range candidates {
		score := 0
		for kw := range filenameKeywords(name) {
			if contextWords[kw] {
				score++
			}
		}
		ranked = append(ranked, scored{name: name, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if maxImages > len(ranked) {
		maxImages = len(ranked)
	}
	selected := make([]string, 0, maxImages)
	for _, s := range ranked[:maxImages] {
		selected = append(selected, filepath.Join(imageDir, s.name))
	}
	return selected, nil
}

func filenameKeywords(filename string) map[string]bool {
	keywords := make(map[string]bool)

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext != "" {
		keywords[ext] = true
	}

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.TrimSpace(leadingJunkPattern.ReplaceAllString(base, ""))
	if base == "" {
		return keywords
	}

	keywords[strings.ToLower(base)] = true
	for _, part := range delimiterPattern.Split(base, -1) {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			keywords[part] = true
		}
	}
	return keywords
}
