package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type RAGConfig struct {
	ChunkSize    int     `yaml:"chunk_size"`
	ChunkOverlap int     `yaml:"chunk_overlap"`
	TopK         int     `yaml:"top_k"`
	Temperature  float64 `yaml:"temperature"`
	IndexPath    string  `yaml:"index_path"`
	ScratchPath  string  `yaml:"scratch_path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Server   ServerConfig `yaml:"server"`
	EmbedLLM LLMConfig    `yaml:"embedding"`
	ChatLLM  LLMConfig    `yaml:"inference"`
	RAG      RAGConfig    `yaml:"rag"`
}

// LoadConfig reads a config from path. A missing file yields the defaults.
// The file is decoded over a pre-populated default config, so absent keys
// keep their defaults while explicit values, including zero, win.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
		},
		EmbedLLM: LLMConfig{
			Provider: "ollama",
			BaseURL:  "http://localhost:11434",
			Model:    "nomic-embed-text",
		},
		ChatLLM: LLMConfig{
			Provider: "ollama",
			BaseURL:  "http://localhost:11434",
			Model:    "gemma3:1b",
		},
		RAG: RAGConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         3,
			IndexPath:    "./vectordb/index.chromem",
			ScratchPath:  "./temp_uploads",
		},
	}
}
