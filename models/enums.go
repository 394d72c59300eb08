package models

// Canonical production stage slugs. The vocabulary is open: it is driven by
// the stage map (see stageMap.go), these constants just name the stages the
// code itself branches on.
const (
	StagePending      = "pending"
	StageDesign       = "design"
	StagePrinting     = "printing"
	StageHeatPressing = "heat_pressing"
	StagePacking      = "packing"
	StageDelivered    = "delivered"
)

type StockMovementType string

const (
	StockMovementTypeConsumed   StockMovementType = "consumed"
	StockMovementTypeRestocked  StockMovementType = "restocked"
	StockMovementTypeAdjustment StockMovementType = "adjustment"
)
