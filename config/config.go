// Package config loads the pipeline settings from an optional YAML file,
// with defaults for every recognized option.
package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Settings is the full configuration surface of the dataset pipeline.
type Settings struct {
	Debug bool

	Output struct {
		// Directory receives all generated files. Created if absent.
		Directory string
	}

	Split struct {
		IncludeOnlyUsedCategories    bool
		SkipImagesWithoutAnnotations bool
	}

	Reconcile struct {
		PrimaryThreshold   float64
		SecondaryThreshold float64
		SentinelLabelID    string
		SentinelUserID     string
		SentinelConfidence string
	}

	Labels struct {
		NameColumn    string
		IDColumn      string
		Strict        bool
		MissingReport string
	}

	Filter struct {
		AnnotationIDColumn string
		LabelIDColumn      string
	}

	Crop struct {
		Padding          int
		Normalize        bool
		UseBBox          bool
		Format           string
		NoBackgroundPath string
	}

	Combine struct {
		MatchText  string
		OutputName string
	}

	Match struct {
		IoUThreshold float64
	}
}

func setDefaults() {
	viper.SetDefault("debug", false)

	viper.SetDefault("output.directory", "output")

	viper.SetDefault("split.includeonlyusedcategories", true)
	viper.SetDefault("split.skipimageswithoutannotations", false)

	viper.SetDefault("reconcile.primarythreshold", 0.45)
	viper.SetDefault("reconcile.secondarythreshold", 0.80)
	viper.SetDefault("reconcile.sentinellabelid", "4196")
	viper.SetDefault("reconcile.sentineluserid", "5")
	viper.SetDefault("reconcile.sentinelconfidence", "0.000")

	viper.SetDefault("labels.namecolumn", "label_name")
	viper.SetDefault("labels.idcolumn", "label_id")
	viper.SetDefault("labels.strict", false)
	viper.SetDefault("labels.missingreport", "")

	viper.SetDefault("filter.annotationidcolumn", "id")
	viper.SetDefault("filter.labelidcolumn", "annotation_id")

	viper.SetDefault("crop.padding", 0)
	viper.SetDefault("crop.normalize", false)
	viper.SetDefault("crop.usebbox", false)
	viper.SetDefault("crop.format", "png")
	viper.SetDefault("crop.nobackgroundpath", "")

	viper.SetDefault("combine.matchtext", "_for_biigle.csv")
	viper.SetDefault("combine.outputname", "image_annotation_labels_names.csv")

	viper.SetDefault("match.iouthreshold", 0.8)
}

// Load reads the settings, optionally from the YAML file at configPath. An
// empty path means defaults only; a named file that cannot be read or parsed
// is an error.
func Load(configPath string) (*Settings, error) {
	setDefaults()

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", configPath)
		}
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.Wrap(err, "unmarshal configuration")
	}
	return settings, nil
}
