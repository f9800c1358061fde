package domain

import (
	"github.com/google/uuid"
)

// PolicyIdentity — неизменяемая идентичность загруженной политики.
type PolicyIdentity struct {
	Index uint      `json:"index"` // Порядковый номер, выдаётся менеджером при загрузке
	GUID  uuid.UUID `json:"guid"`  // Читается из самого модуля
	Name  string    `json:"name"`  // Человекочитаемое имя (например, "Passive Policy 2.0")
	Path  string    `json:"path"`  // Откуда загружен модуль (файл .so или имя in-process фабрики)
}

// Биты capability word, отправляемого платформе (_OSC).
const (
	CapabilityPolicyDisabled   uint32 = 0
	CapabilityPolicyEnabled    uint32 = 1 << 0
	CapabilityActiveControl    uint32 = 1 << 1
	CapabilityPassiveControl   uint32 = 1 << 2
	CapabilityCriticalShutdown uint32 = 1 << 3
)

// CapabilityClaim — что политика заявляет прямо сейчас. Не кэшируется дольше одного цикла переговоров.
type CapabilityClaim struct {
	Active           bool `json:"active"`
	Passive          bool `json:"passive"`
	CriticalShutdown bool `json:"critical_shutdown"`
}

// Word собирает capability word. При grant=false уходит только POLICY_DISABLED.
func (c CapabilityClaim) Word(grant bool) uint32 {
	if !grant {
		return CapabilityPolicyDisabled
	}
	word := CapabilityPolicyEnabled
	if c.Active {
		word |= CapabilityActiveControl
	}
	if c.Passive {
		word |= CapabilityPassiveControl
	}
	if c.CriticalShutdown {
		word |= CapabilityCriticalShutdown
	}
	return word
}

// NegotiationState — последнее выданное разрешение и флаг enabled.
// Разрешение считается выданным только пока Enabled == true.
type NegotiationState struct {
	LastGranted *CapabilityClaim `json:"last_granted,omitempty"`
	Enabled     bool             `json:"enabled"`
}

// PolicyDefinition — запись каталога политик: что загрузить и как стартовать.
// Источник — конфиг или таблица policy_definitions.
type PolicyDefinition struct {
	Name           string   `json:"name" mapstructure:"name"`
	Path           string   `json:"path" mapstructure:"path"`
	EnabledAtStart bool     `json:"enabled_at_start" mapstructure:"enabled_at_start"`
	Events         []string `json:"events" mapstructure:"events"`
}
