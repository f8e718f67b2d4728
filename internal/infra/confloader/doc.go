// Package confloader provides configuration loading for graceserve.
//
// It wraps koanf and layers sources by priority (highest first):
//
//  1. Values loaded with LoadMap (command-line flags)
//  2. Environment aliases such as PORT
//  3. Prefixed environment variables (GRACESERVE_SERVER_PORT)
//  4. The YAML configuration file
//  5. Defaults already present in the target struct
//
// Watcher reports changes to the configuration file using fsnotify.
package confloader
