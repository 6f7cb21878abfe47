package looptest

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadConfig reads harness settings from a config file (format inferred from
// the extension: yaml, toml, json, ...) and returns the corresponding suite
// options, ready to pass to NewSuite. Recognized keys:
//
//	name_prefix           collection-time name filter
//	journal               run journal database path
//	port_lease_dir        cross-process port lease directory
//	ambient_lock_timeout  ambient slot ownership timeout (duration string)
//	markers               map of marker keyword to loop fixture name
//
// Absent keys keep their defaults. Invalid values surface as errors here
// rather than as option panics inside NewSuite.
func LoadConfig(path string) ([]SuiteOption, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var opts []SuiteOption
	if prefix := v.GetString("name_prefix"); prefix != "" {
		opts = append(opts, WithNamePrefix(prefix))
	}
	if path := v.GetString("journal"); path != "" {
		opts = append(opts, WithJournalPath(path))
	}
	if dir := v.GetString("port_lease_dir"); dir != "" {
		opts = append(opts, WithPortLeaseDir(dir))
	}
	if v.IsSet("ambient_lock_timeout") {
		d := v.GetDuration("ambient_lock_timeout")
		if d <= 0 {
			return nil, fmt.Errorf("config %s: ambient_lock_timeout must be a positive duration, got %q",
				path, v.GetString("ambient_lock_timeout"))
		}
		opts = append(opts, WithAmbientLockTimeout(d))
	}
	for marker, fixture := range v.GetStringMapString("markers") {
		if marker == "" || fixture == "" {
			return nil, fmt.Errorf("config %s: markers entries must map a marker name to a fixture name", path)
		}
		opts = append(opts, WithMarkerFixture(marker, fixture))
	}
	return opts, nil
}
