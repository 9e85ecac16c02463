package models

type LogConfig struct {
	ToFile   bool   `yaml:"toFile"`
	FilePath string `yaml:"filePath"`
	ToStdout bool   `yaml:"toStdout"`
	Level    string `yaml:"level"`
	Prefix   string `yaml:"prefix"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port uint16 `yaml:"port"`
}

// FilesConfig describes the static file directory served under /files/
// and the per-file target streaming durations in seconds.
type FilesConfig struct {
	Dir    string             `yaml:"dir"`
	Delays map[string]float64 `yaml:"delays"`
}

type FauxhostConfig struct {
	Log    *LogConfig    `yaml:"log"`
	Server *ServerConfig `yaml:"server"`
	Files  *FilesConfig  `yaml:"files"`
}
