// Package config предоставляет функциональность для загрузки конфигурации
// из файла окружения и переменных окружения.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"useraccounts/pkg/logger"
)

const (
	msgLoadingConfiguration    = "loading configuration"
	msgConfigurationLoaded     = "configuration loaded successfully"
	msgConfigFileMissing       = "configuration file not found, using environment only"
	msgFailedLoadConfiguration = "failed to load configuration"

	errFailedLoadConfiguration = "failed to load configuration"
	errFailedStatConfigFile    = "failed to stat configuration file"

	attrService = "service"
	attrPath    = "path"
)

// Load читает конфигурацию типа T. Если файл по пути path существует, значения
// берутся из него, а переменные окружения имеют приоритет; иначе используется
// только окружение.
func Load[T any](ctx context.Context, serviceName, path string) (*T, error) {
	log := logger.Log(ctx).With(zap.String(attrService, serviceName))

	log.Info(ctx, msgLoadingConfiguration, zap.String(attrPath, path))

	var cfg T

	useFile := path != ""
	if useFile {
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Error(ctx, errFailedStatConfigFile, zap.Error(err))
				return nil, fmt.Errorf("%s: %w", errFailedStatConfigFile, err)
			}
			log.Debug(ctx, msgConfigFileMissing, zap.String(attrPath, path))
			useFile = false
		}
	}

	var err error
	if useFile {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		log.Error(ctx, msgFailedLoadConfiguration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
	}

	log.Info(ctx, msgConfigurationLoaded)

	return &cfg, nil
}
