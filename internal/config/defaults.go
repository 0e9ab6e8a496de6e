package config

import "time"

// NewDefaults returns a Config populated with all default values. They match
// the conventional layout: ./a.out against ./tests.txt in ./testdir.
func NewDefaults() *Config {
	return &Config{
		Subject: SubjectConfig{
			Executable: "./a.out",
		},
		Tests: TestsConfig{
			Files: []string{"./tests.txt"},
		},
		Limits: LimitsConfig{
			LongCommandLength: 100 * 1024,
			ManyArgsCount:     100 * 1000,
			LongPipeLength:    1000,
		},
		Timeouts: TimeoutsConfig{
			Case:  Duration{3 * time.Second},
			Exit:  Duration{time.Second},
			Scale: Duration{5 * time.Second},
		},
		Workspace: WorkspaceConfig{
			ScratchDir:   "./testdir",
			ArtifactsDir: ".",
			DiffWidth:    130,
		},
		Scoring: ScoringConfig{
			Base:  15,
			Bonus: 5,
		},
	}
}
