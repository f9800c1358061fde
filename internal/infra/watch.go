package infra

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// WatchConfig перечитывает файл при изменении и отдаёт новую конфигурацию в onChange.
// Невалидная правка логируется и игнорируется: хост продолжает работать на прежней.
func WatchConfig(v *viper.Viper, logger *zap.Logger, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			logger.Error("config reload rejected", zap.String("file", e.Name), zap.Error(err))
			return
		}
		logger.Info("config reloaded", zap.String("file", e.Name))
		onChange(cfg)
	})
	v.WatchConfig()
}
