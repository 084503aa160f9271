package samplebatch

// Wire result values.
const (
	resultOK     = "Ok"
	resultFailed = "ProcessingFailed"
)

// Transaction shape.
const (
	pcaFeatures    = 28
	featureCount   = pcaFeatures + 2
	secondsPerStep = 7
)

// Amount ranges in currency units.
const (
	regularAmountMax = 250.0
	fraudAmountMin   = 2500.0
	fraudAmountRange = 7500.0
	pcaSpread        = 3.0
)

// PercentageMultiplier converts ratios for display.
const PercentageMultiplier = 100
