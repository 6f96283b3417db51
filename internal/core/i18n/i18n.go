package i18n

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yml
var localesFS embed.FS

// Translations holds all translation strings organized by section
type Translations struct {
	Setup  SetupTranslations  `yaml:"setup"`
	Doctor DoctorTranslations `yaml:"doctor"`
	Launch LaunchTranslations `yaml:"launch"`
	Wizard WizardTranslations `yaml:"wizard"`
	Errors ErrorTranslations  `yaml:"errors"`
	Tips   TipsTranslations   `yaml:"tips"`
}

// SetupTranslations covers the install flow messages
type SetupTranslations struct {
	Starting         string `yaml:"starting"`
	EnvHosted        string `yaml:"env_hosted"`
	EnvLocal         string `yaml:"env_local"`
	FastPath         string `yaml:"fast_path"`
	CheckingGPU      string `yaml:"checking_gpu"`
	GPUFound         string `yaml:"gpu_found"`
	GPUAbsent        string `yaml:"gpu_absent"`
	GPUUnknown       string `yaml:"gpu_unknown"`
	CheckingFFmpeg   string `yaml:"checking_ffmpeg"`
	FFmpegFound      string `yaml:"ffmpeg_found"`
	FFmpegMissing    string `yaml:"ffmpeg_missing"`
	FFmpegInstalling string `yaml:"ffmpeg_installing"`
	FFmpegInstalled  string `yaml:"ffmpeg_installed"`
	FFmpegManual     string `yaml:"ffmpeg_manual"`
	TorchCUDA        string `yaml:"torch_cuda"`
	TorchCPU         string `yaml:"torch_cpu"`
	Confirm          string `yaml:"confirm"`
	Aborted          string `yaml:"aborted"`
	DepsInstalling   string `yaml:"deps_installing"`
	DepsSatisfied    string `yaml:"deps_satisfied"`
	DepsDone         string `yaml:"deps_done"`
	DepsPartial      string `yaml:"deps_partial"`
	MirrorChoosing   string `yaml:"mirror_choosing"`
	MirrorSelected   string `yaml:"mirror_selected"`
	MirrorKept       string `yaml:"mirror_kept"`
	Completed        string `yaml:"completed"`
	NextSteps        string `yaml:"next_steps"`
}

// DoctorTranslations covers the doctor report labels
type DoctorTranslations struct {
	Title         string `yaml:"title"`
	Runtime       string `yaml:"runtime"`
	Python        string `yaml:"python"`
	FFmpeg        string `yaml:"ffmpeg"`
	GPU           string `yaml:"gpu"`
	Deps          string `yaml:"deps"`
	AllGood       string `yaml:"all_good"`
	ProblemsFound string `yaml:"problems_found"`
}

// LaunchTranslations covers app lifecycle messages
type LaunchTranslations struct {
	Starting       string `yaml:"starting"`
	Started        string `yaml:"started"`
	Running        string `yaml:"running"`
	AlreadyRunning string `yaml:"already_running"`
	NotRunning     string `yaml:"not_running"`
	Stopped        string `yaml:"stopped"`
	LogHint        string `yaml:"log_hint"`
	URLHint        string `yaml:"url_hint"`
}

// WizardTranslations drives the interactive `vlsetup init` setup
type WizardTranslations struct {
	StepOf       string `yaml:"step_of"`
	Language     string `yaml:"language"`
	LanguageDesc string `yaml:"language_desc"`
	AppDir       string `yaml:"app_dir"`
	AppDirDesc   string `yaml:"app_dir_desc"`
	Torch        string `yaml:"torch"`
	TorchDesc    string `yaml:"torch_desc"`
	TorchAuto    string `yaml:"torch_auto"`
	TorchCUDA    string `yaml:"torch_cuda"`
	TorchCPU     string `yaml:"torch_cpu"`
	Port         string `yaml:"port"`
	PortDesc     string `yaml:"port_desc"`
	Confirm      string `yaml:"confirm"`
	ConfirmDesc  string `yaml:"confirm_desc"`
	YesSave      string `yaml:"yes_save"`
	NoCancel     string `yaml:"no_cancel"`
	Back         string `yaml:"back"`
	Next         string `yaml:"next"`
	Select       string `yaml:"select"`
	ConfirmKey   string `yaml:"confirm_key"`
	Quit         string `yaml:"quit"`
}

type ErrorTranslations struct {
	PythonNotFound string `yaml:"python_not_found"`
	PipFailed      string `yaml:"pip_failed"`
	FFmpegRequired string `yaml:"ffmpeg_required"`
	AppDirNotFound string `yaml:"app_dir_not_found"`
	ConfigNotFound string `yaml:"config_not_found"`
}

// TipsTranslations holds the troubleshooting hints shown after install
type TipsTranslations struct {
	Title string   `yaml:"title"`
	Items []string `yaml:"items"`
}

var (
	translationsCache = make(map[string]*Translations)
	cacheMutex        sync.RWMutex
	defaultLang       = "en"
)

// SupportedLanguages returns all available language codes
var SupportedLanguages = []struct {
	Code string
	Name string
}{
	{"en", "English"},
	{"zh", "中文"},
}

// GetTranslations returns translations for the specified language
func GetTranslations(lang string) *Translations {
	cacheMutex.RLock()
	if t, ok := translationsCache[lang]; ok {
		cacheMutex.RUnlock()
		return t
	}
	cacheMutex.RUnlock()

	// Load from file
	t, err := loadTranslations(lang)
	if err != nil {
		// Fall back to English
		if lang != defaultLang {
			return GetTranslations(defaultLang)
		}
		// Return empty translations if even English fails
		return &Translations{}
	}

	cacheMutex.Lock()
	translationsCache[lang] = t
	cacheMutex.Unlock()

	return t
}

func loadTranslations(lang string) (*Translations, error) {
	filename := fmt.Sprintf("locales/%s.yml", lang)
	data, err := localesFS.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var t Translations
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

// T is a convenience function for getting translations
func T(lang string) *Translations {
	return GetTranslations(lang)
}
