package advisor

import (
	_ "embed"
	"encoding/json"
)

// Embedded fallbacks so the advisor works offline when the model store is
// unreachable, mirroring the original dashboard's offline mode.
var (
	//go:embed defaultdata/crop_database.json
	defaultCropDatabaseJSON []byte
	//go:embed defaultdata/rule_engine_config.json
	defaultRuleConfigJSON []byte
)

// DefaultCropDatabase returns the embedded crop database.
func DefaultCropDatabase() *CropDatabase {
	var db CropDatabase
	if err := json.Unmarshal(defaultCropDatabaseJSON, &db); err != nil {
		panic("embedded crop database is invalid: " + err.Error())
	}
	return &db
}

// DefaultRuleConfig returns the embedded rule engine configuration.
func DefaultRuleConfig() RuleConfig {
	var config RuleConfig
	if err := json.Unmarshal(defaultRuleConfigJSON, &config); err != nil {
		panic("embedded rule config is invalid: " + err.Error())
	}
	return config
}
