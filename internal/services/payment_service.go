package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"payhost-backend/internal/database"
	"payhost-backend/internal/metrics"
	"payhost-backend/internal/models"
	"payhost-backend/internal/payment"
	"payhost-backend/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	// Provider packages register their factories on import.
	_ "payhost-backend/internal/payment/alipay"
	_ "payhost-backend/internal/payment/epay"
	_ "payhost-backend/internal/payment/wechatpay"
)

var tracer = otel.Tracer("payhost.plugins")

// DebugChangeMeta describes who requested a debug switch and from where.
type DebugChangeMeta struct {
	Operator  string
	IPAddress string
	Source    models.DebugChangeSource
}

// PaymentMethod is the public view of an enabled plugin.
type PaymentMethod struct {
	UUID     string               `json:"uuid"`
	Platform payment.PlatformType `json:"platform"`
	Name     string               `json:"name"`
	Sandbox  bool                 `json:"sandbox"`
	Endpoint string               `json:"endpoint,omitempty"`
}

// LoadPlugins builds and registers one plugin per configured platform.
// sandbox is the initial debug mode for platforms that have no stored
// setting yet; a stored setting always wins.
func LoadPlugins(reg *payment.Registry, platforms []string, sandbox bool) error {
	log := logger.Named("plugins")

	for _, name := range platforms {
		platform, err := payment.ParsePlatformType(name)
		if err != nil {
			return err
		}

		plugin, err := payment.Build(platform, sandbox)
		if err != nil {
			return err
		}

		setting, err := ensurePluginSetting(platform, sandbox)
		if err != nil {
			return fmt.Errorf("load setting for %s: %w", platform, err)
		}
		plugin.SetDebug(setting.Debug)

		// A plugin with a broken config is still registered so it can be
		// fixed through the admin API.
		if err := applyConfig(plugin, setting.Config); err != nil && !errors.Is(err, payment.ErrNotConfigurable) {
			log.Warn("Plugin config rejected", zap.String("platform", platform.String()), zap.Error(err))
		}

		if err := reg.Register(plugin); err != nil {
			return err
		}
		metrics.ObserveDebug(platform.String(), plugin.IsDebug())
		log.Info("Plugin registered",
			zap.String("platform", platform.String()),
			zap.String("environment", payment.Environment(plugin)),
		)
	}
	return nil
}

func ensurePluginSetting(platform payment.PlatformType, debug bool) (*models.PluginSetting, error) {
	setting, err := GetPluginSetting(platform)
	if err == nil {
		return setting, nil
	}
	if !errors.Is(err, payment.ErrPluginNotFound) {
		return nil, err
	}

	setting = &models.PluginSetting{
		UUID:      uuid.New().String(),
		Platform:  platform.String(),
		Name:      platform.DisplayName(),
		Debug:     debug,
		Enable:    true,
		Config:    datatypes.JSON("{}"),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := database.DB.Create(setting).Error; err != nil {
		return nil, err
	}
	return setting, nil
}

func applyConfig(plugin payment.Plugin, raw datatypes.JSON) error {
	if len(raw) == 0 {
		return nil
	}
	var configMap map[string]interface{}
	if err := json.Unmarshal(raw, &configMap); err != nil {
		return err
	}
	if len(configMap) == 0 {
		return nil
	}
	c, ok := plugin.(payment.Configurable)
	if !ok {
		return payment.ErrNotConfigurable
	}
	return c.SetConfig(configMap)
}

func ListPluginSettings() ([]models.PluginSetting, error) {
	var settings []models.PluginSetting
	if err := database.DB.Order("id asc").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func GetPluginSetting(platform payment.PlatformType) (*models.PluginSetting, error) {
	var setting models.PluginSetting
	err := database.DB.Where("platform = ?", platform.String()).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", payment.ErrPluginNotFound, platform)
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// UpdatePluginSetting changes display name, enable flag and provider config.
// A new config is checked on a scratch plugin, stored, and only then applied
// to the live plugin.
func UpdatePluginSetting(reg *payment.Registry, platform payment.PlatformType, name string, enable *bool, config map[string]interface{}) (*models.PluginSetting, error) {
	setting, err := GetPluginSetting(platform)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if enable != nil {
		updates["enable"] = *enable
	}

	var live payment.Configurable
	if config != nil {
		plugin, err := reg.Get(platform)
		if err != nil {
			return nil, err
		}
		c, ok := plugin.(payment.Configurable)
		if !ok {
			return nil, fmt.Errorf("%w: %s", payment.ErrNotConfigurable, platform)
		}
		if err := validateConfig(platform, plugin.IsDebug(), config); err != nil {
			return nil, err
		}
		configJSON, err := json.Marshal(config)
		if err != nil {
			return nil, err
		}
		updates["config"] = datatypes.JSON(configJSON)
		live = c
	}
	updates["updated_at"] = time.Now()

	if err := database.DB.Model(setting).Updates(updates).Error; err != nil {
		return nil, err
	}

	if live != nil {
		if err := live.SetConfig(config); err != nil {
			logger.Named("plugins").Error("Stored config rejected by live plugin",
				zap.String("platform", platform.String()), zap.Error(err))
			return nil, err
		}
	}
	return GetPluginSetting(platform)
}

func validateConfig(platform payment.PlatformType, debug bool, config map[string]interface{}) error {
	scratch, err := payment.Build(platform, debug)
	if err != nil {
		return err
	}
	c, ok := scratch.(payment.Configurable)
	if !ok {
		return fmt.Errorf("%w: %s", payment.ErrNotConfigurable, platform)
	}
	return c.SetConfig(config)
}

// SetPluginDebug switches one plugin, persists the new mode with an audit
// record and tells the other instances about it.
func SetPluginDebug(ctx context.Context, reg *payment.Registry, platform payment.PlatformType, debug bool, meta DebugChangeMeta) error {
	ctx, span := tracer.Start(ctx, "plugins.SetDebug",
		trace.WithAttributes(
			attribute.String("payment.platform", platform.String()),
			attribute.Bool("payment.debug", debug),
			attribute.String("payment.source", string(meta.Source)),
		),
	)
	defer span.End()

	if err := setPluginDebug(ctx, reg, platform, debug, meta); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// debugLocks holds one *sync.Mutex per platform. It keeps the stored mode and
// the live flag in the same order when one platform is switched concurrently.
var debugLocks sync.Map

func lockPlatform(platform payment.PlatformType) func() {
	v, _ := debugLocks.LoadOrStore(platform, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func setPluginDebug(ctx context.Context, reg *payment.Registry, platform payment.PlatformType, debug bool, meta DebugChangeMeta) error {
	plugin, err := reg.Get(platform)
	if err != nil {
		return err
	}
	if _, err := GetPluginSetting(platform); err != nil {
		return err
	}

	unlock := lockPlatform(platform)
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PluginSetting{}).
			Where("platform = ?", platform.String()).
			Updates(map[string]interface{}{"debug": debug, "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		return tx.Create(&models.DebugChange{
			CreatedAt: time.Now(),
			Platform:  platform.String(),
			Debug:     debug,
			Operator:  meta.Operator,
			Source:    meta.Source,
			IPAddress: meta.IPAddress,
		}).Error
	})
	if err != nil {
		unlock()
		return err
	}
	plugin.SetDebug(debug)
	metrics.ObserveDebug(platform.String(), debug)
	unlock()

	metrics.RecordDebugChange(platform.String(), string(meta.Source))

	event := DebugEvent{
		Platform: platform,
		Debug:    debug,
		Operator: meta.Operator,
		Source:   meta.Source,
		Origin:   InstanceID,
		At:       time.Now(),
	}
	notifyWatchers(event)

	if err := publishDebugChange(ctx, event); err != nil {
		// The change is durable; peers pick it up on their next restart.
		logger.Named("plugins").Warn("Failed to publish debug change",
			zap.String("platform", platform.String()), zap.Error(err))
	}

	logger.Named("plugins").Info("Plugin debug mode changed",
		zap.String("platform", platform.String()),
		zap.Bool("debug", debug),
		zap.String("operator", meta.Operator),
		zap.String("source", string(meta.Source)),
	)
	return nil
}

// SetAllPluginsDebug applies the same mode to every registered plugin.
func SetAllPluginsDebug(ctx context.Context, reg *payment.Registry, debug bool, meta DebugChangeMeta) error {
	for _, plugin := range reg.List() {
		if err := SetPluginDebug(ctx, reg, plugin.PlatformType(), debug, meta); err != nil {
			return fmt.Errorf("%s: %w", plugin.PlatformType(), err)
		}
	}
	return nil
}

// GetDebugHistory returns the most recent debug switches, newest first.
func GetDebugHistory(platform payment.PlatformType, limit int) ([]models.DebugChange, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var changes []models.DebugChange
	err := database.DB.Where("platform = ?", platform.String()).
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// GetEnabledPaymentMethods lists enabled plugins that are live in reg.
func GetEnabledPaymentMethods(reg *payment.Registry) ([]PaymentMethod, error) {
	var settings []models.PluginSetting
	if err := database.DB.Where("enable = ?", true).Order("id asc").Find(&settings).Error; err != nil {
		return nil, err
	}

	methods := make([]PaymentMethod, 0, len(settings))
	for _, s := range settings {
		platform, err := payment.ParsePlatformType(s.Platform)
		if err != nil {
			continue
		}
		plugin, err := reg.Get(platform)
		if err != nil {
			continue
		}
		m := PaymentMethod{
			UUID:     s.UUID,
			Platform: platform,
			Name:     s.Name,
			Sandbox:  plugin.IsDebug(),
		}
		if ep, ok := plugin.(payment.EndpointProvider); ok {
			m.Endpoint = ep.Endpoint()
		}
		methods = append(methods, m)
	}
	return methods, nil
}
