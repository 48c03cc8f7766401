// Package config manages user-level settings stored at ~/.modrules/config.yaml.
// Settings such as the engine root, default platform and output format can
// also come from MODRULES_* environment variables or a .env file in the
// working directory.
package config
