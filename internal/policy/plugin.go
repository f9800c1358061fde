package policy

import (
	"fmt"
	"plugin"
	"strings"
)

// PluginSymbol экспортируемая функция разделяемого модуля: func NewPolicy() policy.Module.
const PluginSymbol = "NewPolicy"

// PluginLoader открывает модули, собранные с -buildmode=plugin.
type PluginLoader struct{}

func (PluginLoader) Open(path string) (Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin %s: %w", path, err)
	}
	sym, err := p.Lookup(PluginSymbol)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", path, err)
	}
	newPolicy, ok := sym.(func() Module)
	if !ok {
		return nil, fmt.Errorf("plugin %s: %s has type %T, want func() policy.Module", path, PluginSymbol, sym)
	}
	return newPolicy(), nil
}

// PathLoader выбирает загрузчик по пути: файлы .so идут в Plugins, остальное в Builtin.
type PathLoader struct {
	Builtin Loader
	Plugins Loader
}

func (l PathLoader) Open(path string) (Module, error) {
	if strings.HasSuffix(path, ".so") {
		if l.Plugins == nil {
			return nil, fmt.Errorf("plugin loading is disabled, cannot open %s", path)
		}
		return l.Plugins.Open(path)
	}
	return l.Builtin.Open(path)
}
