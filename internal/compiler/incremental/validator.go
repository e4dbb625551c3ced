package incremental

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// IssueSeverity grades a validation finding.
type IssueSeverity int

const (
	SeverityError IssueSeverity = iota
	SeverityWarning
	SeverityInfo
)

// String returns a human-readable name for the severity.
func (s IssueSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// ValidationIssue is one finding from a cache consistency check.
type ValidationIssue struct {
	Severity IssueSeverity
	Message  string
	FilePath string
}

// ValidationResult is a report, not an exception: the caller decides
// whether warnings block further action. Valid means no errors were found.
type ValidationResult struct {
	Valid    bool
	Issues   []ValidationIssue
	Warnings []ValidationIssue
}

// CacheValidator runs read-only consistency checks over a cache.
type CacheValidator struct {
	config Config
}

// NewCacheValidator creates a validator with the given engine config.
func NewCacheValidator(config Config) *CacheValidator {
	return &CacheValidator{config: config}
}

// ValidateCache checks every entry for a missing source file (error), an
// on-disk modification time newer than CompiledAt (warning), and declared
// dependencies that are neither cached nor present on disk (error), then
// reports every cycle in the stored graph as an error naming its members.
func (cv *CacheValidator) ValidateCache(cache *CompilationCache) ValidationResult {
	issues := make([]ValidationIssue, 0)
	warnings := make([]ValidationIssue, 0)

	paths := make([]string, 0, len(cache.Entries))
	for path := range cache.Entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		entry := cache.Entries[path]

		info, err := os.Stat(path)
		if err != nil {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Cached file no longer exists: %s", path),
				FilePath: path,
			})
		} else if info.ModTime().After(entry.CompiledAt) {
			warnings = append(warnings, ValidationIssue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("File modified after compilation: %s", path),
				FilePath: path,
			})
		}

		for _, dep := range entry.Dependencies {
			if _, cached := cache.Entries[dep]; cached {
				continue
			}
			if _, err := os.Stat(dep); err == nil {
				continue
			}
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Missing dependency: %s (required by %s)", dep, path),
				FilePath: path,
			})
		}
	}

	builder := NewDependencyGraphBuilderFor(cache.DependencyGraph)
	for _, cycle := range builder.FindStronglyConnectedComponents() {
		members := append([]string(nil), cycle...)
		sort.Strings(members)
		issues = append(issues, ValidationIssue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Cyclic dependency detected: %s", strings.Join(members, " -> ")),
		})
	}

	return ValidationResult{
		Valid:    len(issues) == 0,
		Issues:   issues,
		Warnings: warnings,
	}
}
