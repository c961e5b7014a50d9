package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spf13/viper"

	"github.com/Paintersrp/loradex/internal/constants"
	"github.com/Paintersrp/loradex/internal/views"
)

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Library is one models directory together with its display preferences.
type Library struct {
	ModelsDir      string       `yaml:"models_dir"      json:"modelsDirectory"`
	DefaultSort    string       `yaml:"default_sort"    json:"defaultSort"`
	DefaultView    string       `yaml:"default_view"    json:"defaultView"`
	GroupBy        string       `yaml:"group_by"        json:"groupBy"`
	HideNSFW       bool         `yaml:"hide_nsfw"       json:"hideNSFW"`
	VisibleColumns []string     `yaml:"visible_columns" json:"visibleColumns"`
	IgnoredFolders []string     `yaml:"ignored_folders" json:"ignoredFolders"`
	LogLevel       string       `yaml:"log_level"       json:"logLevel"`
	Server         ServerConfig `yaml:"server"          json:"server"`
}

type Config struct {
	Libraries      map[string]*Library `yaml:"libraries"       json:"libraries"`
	CurrentLibrary string              `yaml:"current_library" json:"current_library"`

	active *Library `yaml:"-"`
	home   string   `yaml:"-"`
}

const defaultLibraryName = "default"

var ValidViews = map[string]bool{
	"table": true,
	"grid":  true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// DefaultColumns are shown when a library does not choose its own.
var DefaultColumns = []string{"Filename", "Base Model", "Category", "Size", "Date"}

func newLibrary() *Library {
	lib := &Library{}
	lib.ensureDefaults()
	return lib
}

func (lib *Library) ensureDefaults() {
	if lib.DefaultSort == "" {
		lib.DefaultSort = views.SortNameAsc
	}
	if lib.DefaultView == "" {
		lib.DefaultView = "table"
	}
	if lib.GroupBy == "" {
		lib.GroupBy = views.GroupNone
	}
	if len(lib.VisibleColumns) == 0 {
		lib.VisibleColumns = append([]string(nil), DefaultColumns...)
	}
	if lib.LogLevel == "" {
		lib.LogLevel = "warn"
	}
	if lib.Server.Addr == "" {
		lib.Server.Addr = constants.DefaultAddr
	}
}

// Validate checks every enumerated setting of the library.
func (lib *Library) Validate() error {
	if !views.ValidSort(lib.DefaultSort) {
		return fmt.Errorf("invalid sort: %q. Please choose from %s or column:<Column>:<asc|desc>",
			lib.DefaultSort, quoteList(views.SortModes))
	}
	if !ValidViews[lib.DefaultView] {
		return fmt.Errorf("invalid view: %q. Please choose from 'table' or 'grid'", lib.DefaultView)
	}
	if !views.ValidGroupBy(lib.GroupBy) {
		return fmt.Errorf("invalid group: %q. Please choose from %s", lib.GroupBy, quoteList(views.GroupModes))
	}
	for _, column := range lib.VisibleColumns {
		if !isColumn(column) {
			return fmt.Errorf("invalid column: %q. Please choose from %s", column, quoteList(views.Columns))
		}
	}
	if !validLogLevels[lib.LogLevel] {
		return fmt.Errorf("invalid log level: %q. Please choose from 'debug', 'info', 'warn', or 'error'", lib.LogLevel)
	}
	return nil
}

func isColumn(name string) bool {
	for _, c := range views.Columns {
		if c == name {
			return true
		}
	}
	return false
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("'%s'", v)
	}

	switch len(quoted) {
	case 0:
		return ""
	case 1:
		return quoted[0]
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}

func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{home: home}
	if len(strings.TrimSpace(string(data))) == 0 {
		cfg.Libraries = map[string]*Library{
			defaultLibraryName: newLibrary(),
		}
		cfg.CurrentLibrary = defaultLibraryName
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.ensureInitialized(); err != nil {
		return nil, err
	}

	lib, err := cfg.ActiveLibrary()
	if err != nil {
		return nil, err
	}
	if err := lib.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) ensureInitialized() error {
	if cfg.Libraries == nil {
		cfg.Libraries = make(map[string]*Library)
	}

	if cfg.CurrentLibrary == "" {
		if len(cfg.Libraries) == 0 {
			cfg.Libraries[defaultLibraryName] = newLibrary()
			cfg.CurrentLibrary = defaultLibraryName
		} else {
			cfg.CurrentLibrary = cfg.LibraryNames()[0]
		}
	}

	return cfg.setActiveLibrary(cfg.CurrentLibrary)
}

func (cfg *Config) setActiveLibrary(name string) error {
	if name == "" {
		return fmt.Errorf("library name cannot be empty")
	}
	lib, ok := cfg.Libraries[name]
	if !ok {
		return fmt.Errorf("library %q does not exist", name)
	}
	if lib == nil {
		lib = newLibrary()
		cfg.Libraries[name] = lib
	}

	lib.ensureDefaults()
	cfg.CurrentLibrary = name
	cfg.active = lib

	syncLibraryWithViper(lib)
	return nil
}

func syncLibraryWithViper(lib *Library) {
	viper.Set("models_dir", lib.ModelsDir)
	viper.Set("default_sort", lib.DefaultSort)
	viper.Set("default_view", lib.DefaultView)
	viper.Set("group_by", lib.GroupBy)
	viper.Set("hide_nsfw", lib.HideNSFW)
	viper.Set("log_level", lib.LogLevel)
	viper.Set("server.addr", lib.Server.Addr)
	viper.Set("visible_columns", append([]string{}, lib.VisibleColumns...))
	viper.Set("ignored_folders", append([]string{}, lib.IgnoredFolders...))
}

func (cfg *Config) ActiveLibrary() (*Library, error) {
	if cfg.active != nil {
		return cfg.active, nil
	}

	if cfg.CurrentLibrary == "" {
		return nil, fmt.Errorf("no library is currently selected")
	}

	if err := cfg.setActiveLibrary(cfg.CurrentLibrary); err != nil {
		return nil, err
	}

	return cfg.active, nil
}

func (cfg *Config) MustLibrary() *Library {
	lib, err := cfg.ActiveLibrary()
	if err != nil {
		panic(err)
	}
	return lib
}

func (cfg *Config) LibraryNames() []string {
	names := make([]string, 0, len(cfg.Libraries))
	for name := range cfg.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cfg *Config) SwitchLibrary(name string) error {
	if err := cfg.setActiveLibrary(name); err != nil {
		return err
	}
	return cfg.Save()
}

// ActivateLibrary selects a library for this process without persisting it.
func (cfg *Config) ActivateLibrary(name string) error {
	return cfg.setActiveLibrary(name)
}

func (cfg *Config) AddLibrary(name string, lib *Library, makeCurrent bool) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("library name cannot be empty")
	}

	if cfg.Libraries == nil {
		cfg.Libraries = make(map[string]*Library)
	}

	if _, exists := cfg.Libraries[trimmed]; exists {
		return fmt.Errorf("library %q already exists", trimmed)
	}

	if lib == nil {
		lib = newLibrary()
	}
	lib.ensureDefaults()
	if err := lib.Validate(); err != nil {
		return err
	}
	cfg.Libraries[trimmed] = lib

	if cfg.CurrentLibrary == "" || makeCurrent {
		if err := cfg.setActiveLibrary(trimmed); err != nil {
			return err
		}
	}

	return cfg.Save()
}

func (cfg *Config) RemoveLibrary(name string) error {
	if len(cfg.Libraries) <= 1 {
		return fmt.Errorf("cannot remove the last library")
	}

	if _, exists := cfg.Libraries[name]; !exists {
		return fmt.Errorf("library %q does not exist", name)
	}

	delete(cfg.Libraries, name)

	if cfg.CurrentLibrary == name {
		cfg.active = nil
		cfg.CurrentLibrary = ""
		if err := cfg.ensureInitialized(); err != nil {
			return err
		}
	}

	return cfg.Save()
}

// SettingKeys lists the keys accepted by SetValue.
var SettingKeys = []string{
	"models_dir",
	"default_sort",
	"default_view",
	"group_by",
	"hide_nsfw",
	"visible_columns",
	"ignored_folders",
	"log_level",
	"server.addr",
}

// SetValue updates one setting of the active library from its string form
// and saves the config. The previous value is restored if validation fails.
func (cfg *Config) SetValue(key, value string) error {
	lib, err := cfg.ActiveLibrary()
	if err != nil {
		return err
	}

	updated := *lib
	value = strings.TrimSpace(value)
	switch key {
	case "models_dir":
		updated.ModelsDir = value
	case "default_sort":
		updated.DefaultSort = value
	case "default_view":
		updated.DefaultView = value
	case "group_by":
		updated.GroupBy = value
	case "hide_nsfw":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for hide_nsfw: %q", value)
		}
		updated.HideNSFW = b
	case "visible_columns":
		updated.VisibleColumns = splitList(value)
	case "ignored_folders":
		updated.IgnoredFolders = splitList(value)
	case "log_level":
		updated.LogLevel = value
	case "server.addr":
		updated.Server.Addr = value
	default:
		return fmt.Errorf("unknown setting %q. Please choose from %s", key, quoteList(SettingKeys))
	}

	return cfg.UpdateLibrary(updated)
}

// UpdateLibrary replaces the active library's settings after validating them.
func (cfg *Config) UpdateLibrary(updated Library) error {
	lib, err := cfg.ActiveLibrary()
	if err != nil {
		return err
	}

	updated.ensureDefaults()
	if err := updated.Validate(); err != nil {
		return err
	}

	*lib = updated
	return cfg.Save()
}

// Value returns the string form of a setting of the active library.
func (lib *Library) Value(key string) (string, bool) {
	switch key {
	case "models_dir":
		return lib.ModelsDir, true
	case "default_sort":
		return lib.DefaultSort, true
	case "default_view":
		return lib.DefaultView, true
	case "group_by":
		return lib.GroupBy, true
	case "hide_nsfw":
		return strconv.FormatBool(lib.HideNSFW), true
	case "visible_columns":
		return strings.Join(lib.VisibleColumns, ","), true
	case "ignored_folders":
		return strings.Join(lib.IgnoredFolders, ","), true
	case "log_level":
		return lib.LogLevel, true
	case "server.addr":
		return lib.Server.Addr, true
	}
	return "", false
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (cfg *Config) GetConfigPath() string {
	if cfg.home != "" {
		return GetConfigPath(cfg.home)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return GetConfigPath(homeDir)
}

func (cfg *Config) Save() error {
	lib, err := cfg.ActiveLibrary()
	if err != nil {
		return err
	}
	if err := lib.Validate(); err != nil {
		return err
	}

	syncLibraryWithViper(lib)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}
