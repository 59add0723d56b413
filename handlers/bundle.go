package handlers

import (
	"oseplatform/services/operator"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	OperatorService operator.OperatorService

	// Operator session endpoints
	LoginHandler  gin.HandlerFunc
	LogoutHandler gin.HandlerFunc

	// Series notification endpoints
	ValidateBulkHandler  gin.HandlerFunc
	ConfigOptionsHandler gin.HandlerFunc
	SendHandler          gin.HandlerFunc
	HistoryHandler       gin.HandlerFunc
	HistoryItemHandler   gin.HandlerFunc
	HistoryCSVHandler    gin.HandlerFunc

	// Code resolution endpoints
	SmartScanHandler        gin.HandlerFunc
	SearchByLocationHandler gin.HandlerFunc
	SearchByCartonHandler   gin.HandlerFunc
	SearchByPalletHandler   gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}
