// Package config loads the dashboard configuration.
//
// # Configuration Sources
//
// Values are layered, later sources winning:
//
//	1. Defaults (Default)
//	2. A YAML file: $SALES_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//	3. A .env file in the working directory
//	4. Environment variables
//
// # Environment Variables
//
// Variables are prefixed with SALES_ and follow the struct nesting:
//
//	SALES_SERVER_PORT=8501
//	SALES_DATA_WORKBOOK_PATH=data/coffee_shop_sales.xlsx
//	SALES_DATA_CSV_PATH=data/coffee_shop_sales_enriched.csv
//	SALES_ANALYSIS_FOCUS_LOCATION="Lower Manhattan"
//	SALES_LOGGING_LEVEL=debug
//
// # Validation
//
// Load validates the merged result with go-playground/validator; ranges and
// enumerations are declared in the struct tags.
package config
