// Package config provides the configuration of the IJ crawler and
// transformer: project root and derived data directories, crawl settings,
// logging level and report preferences.
//
// A Config is built from defaults (NewConfig), then overridden in order by
// the yaml config file (ApplyFile), the environment (ApplyEnv) and finally
// the command-line flags. It is passed explicitly to both stages; there is
// no global state.
package config
