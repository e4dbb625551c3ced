package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	newTemplate  string
	newSourceDir string
)

func init() {
	newCmd.Flags().StringVarP(&newTemplate, "template", "t", "", "Project template (minimal, avionics)")
	newCmd.Flags().StringVar(&newSourceDir, "source-dir", "model", "Directory for .arc files")
}

// validateProjectName rejects names that would escape the working directory
// or trip up the filesystem.
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}

	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, name)
	if !matched {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}

	return nil
}

var newCmd = &cobra.Command{
	Use:   "new [project-name]",
	Short: "Create a new ArcLang project",
	Long: `Create a new ArcLang project with a configuration file and sample model
files.

Templates:
  minimal  - an empty model with one requirement
  avionics - a small flight-control example with traced requirements

Examples:
  arclang new flight-control
  arclang new flight-control --template avionics`,
	RunE: runNew,
}

func runNew(cmd *cobra.Command, args []string) error {
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)

	var projectName string
	if len(args) > 0 {
		projectName = args[0]
	} else {
		prompt := &survey.Input{
			Message: "Project name:",
		}
		if err := survey.AskOne(prompt, &projectName, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	if err := validateProjectName(projectName); err != nil {
		return err
	}

	template := newTemplate
	if template == "" {
		prompt := &survey.Select{
			Message: "Select a template:",
			Options: []string{"minimal", "avionics"},
			Default: "minimal",
		}
		if err := survey.AskOne(prompt, &template); err != nil {
			return err
		}
	}

	files, ok := projectTemplates[template]
	if !ok {
		return fmt.Errorf("unknown template %q (available: minimal, avionics)", template)
	}

	if _, err := os.Stat(projectName); err == nil {
		return fmt.Errorf("directory %s already exists", projectName)
	}

	sourceDir := filepath.Join(projectName, newSourceDir)
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		return err
	}

	configContent := fmt.Sprintf(configTemplate, projectName, newSourceDir)
	if err := os.WriteFile(filepath.Join(projectName, "arclang.yml"), []byte(configContent), 0644); err != nil {
		return err
	}

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(sourceDir, name), []byte(content), 0644); err != nil {
			return err
		}
	}

	gitignore := ".arclang/\narclang-lsp.log\n"
	if err := os.WriteFile(filepath.Join(projectName, ".gitignore"), []byte(gitignore), 0644); err != nil {
		return err
	}

	successColor.Printf("✓ Created project %s\n", projectName)
	infoColor.Printf("  cd %s\n", projectName)
	infoColor.Printf("  arclang build\n")
	return nil
}

const configTemplate = `project_name: %s
source_dir: %s

cache:
  dir: .arclang/cache
  max_size_mb: 100
  strategy: content

build:
  parallel: false
  invalidation_strategy: conservative
`

var projectTemplates = map[string]map[string]string{
	"minimal": {
		"main.arc": `model Main {
    version: "0.1.0"
}

requirement REQ_001 {
    title: "Describe the first requirement"
    priority: "medium"
}
`,
	},
	"avionics": {
		"requirements.arc": `model FlightControl {
    version: "0.1.0"
    domain: "avionics"
}

requirement REQ_ALT_HOLD {
    title: "Altitude hold"
    description: "The system shall hold the commanded altitude within 50 feet."
    priority: "high"
}

requirement REQ_FAILSAFE {
    title: "Sensor failure handling"
    description: "The system shall enter a failsafe mode on loss of sensor input."
    priority: "critical"
}
`,
		"architecture.arc": `import "requirements.arc"

component AltitudeController {
    implements: [REQ_ALT_HOLD]
    provides: [altitude_command]
    requires: [altitude_sensor]
}

component FailsafeMonitor {
    implements: [REQ_FAILSAFE]
    requires: [altitude_sensor]
}
`,
		"traceability.arc": `import "requirements.arc"
import "architecture.arc"

trace AltitudeController -> REQ_ALT_HOLD : satisfies
trace FailsafeMonitor -> REQ_FAILSAFE : satisfies
`,
	},
}
