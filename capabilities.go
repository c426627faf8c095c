package bulkdml

// Capabilities defines which SQL features are supported by each dialect
var Capabilities = map[Dialect]map[Feature]bool{
	DialectMySQL: {
		FeatureBacktickIdentifiers:  true,
		FeatureBackslashEscapes:     true,
		FeatureNumberedPlaceholders: false,
	},
	DialectMariaDB: {
		FeatureBacktickIdentifiers:  true,
		FeatureBackslashEscapes:     true,
		FeatureNumberedPlaceholders: false,
	},
	DialectPostgres: {
		FeatureBacktickIdentifiers:  false,
		FeatureBackslashEscapes:     false,
		FeatureNumberedPlaceholders: true,
	},
	DialectSQLite: {
		FeatureBacktickIdentifiers:  true,
		FeatureBackslashEscapes:     false,
		FeatureNumberedPlaceholders: false,
	},
}
