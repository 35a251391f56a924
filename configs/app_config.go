package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig ダッシュボードの表示設定
type AppConfig struct {
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description" yaml:"description"`
	APIBaseURL  string            `json:"api_base_url" yaml:"-"`
	Theme       ThemeConfig       `json:"theme" yaml:"theme"`
	Meta        map[string]string `json:"meta" yaml:"meta"`
}

// ThemeConfig 画面のカラーパレットと背景
type ThemeConfig struct {
	Primary      map[string]string `json:"primary" yaml:"primary"`
	Gradients    map[string]string `json:"gradients" yaml:"gradients"`
	BackdropBlur string            `json:"backdrop_blur_xs" yaml:"backdrop_blur_xs"`
}

// DefaultAppConfigPath APP_CONFIG_PATHが未設定の場合の設定ファイル
const DefaultAppConfigPath = "configs/app.yaml"

// DefaultAppConfig 設定ファイルが無い場合の表示設定
func DefaultAppConfig(cfg *Config) *AppConfig {
	appCfg := &AppConfig{
		Title:       "Nestle UAE - Price Optimization",
		Description: "Dynamic price optimization platform for Nestle products in UAE",
		Theme: ThemeConfig{
			Primary: map[string]string{
				"50":  "#faf5ff",
				"100": "#f3e8ff",
				"200": "#e9d5ff",
				"300": "#d8b4fe",
				"400": "#c084fc",
				"500": "#a855f7",
				"600": "#9333ea",
				"700": "#7e22ce",
				"800": "#6b21a8",
				"900": "#581c87",
			},
			Gradients: map[string]string{
				"gradient-radial":      "radial-gradient(var(--tw-gradient-stops))",
				"gradient-purple":      "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
				"gradient-purple-pink": "linear-gradient(135deg, #667eea 0%, #764ba2 50%, #f093fb 100%)",
			},
			BackdropBlur: "2px",
		},
		Meta: map[string]string{
			"charset":  "utf-8",
			"viewport": "width=device-width, initial-scale=1",
		},
	}
	if cfg != nil {
		appCfg.APIBaseURL = cfg.APIBaseURL
	}
	return appCfg
}

// LoadAppConfig YAMLファイルからダッシュボード設定を読み込みます。
// ファイルが存在しない場合は既定値を返します。YAMLに書かれた項目だけが既定値を上書きします。
func LoadAppConfig(path string, cfg *Config) (*AppConfig, error) {
	appCfg := DefaultAppConfig(cfg)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return appCfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ダッシュボード設定ファイルの読み込みに失敗: %w", err)
	}

	if err := yaml.Unmarshal(data, appCfg); err != nil {
		return nil, fmt.Errorf("YAMLのパースに失敗: %w", err)
	}
	return appCfg, nil
}
