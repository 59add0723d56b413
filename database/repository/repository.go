package repository

import (
	customerRepo "oseplatform/database/repository/customer"
	deviceRepo "oseplatform/database/repository/device"
	historyRepo "oseplatform/database/repository/history"
	operatorRepo "oseplatform/database/repository/operator"
)

// Re-export the DeviceRepository interface and constructor.
type DeviceRepository = deviceRepo.DeviceRepository

var NewMongoDeviceRepo = deviceRepo.NewMongoDeviceRepo

// Re-export the HistoryRepository interface and constructor.
type HistoryRepository = historyRepo.HistoryRepository

var NewMongoHistoryRepo = historyRepo.NewMongoHistoryRepo

// Re-export the CustomerRepository interface and constructor.
type CustomerRepository = customerRepo.CustomerRepository

var NewMongoCustomerRepo = customerRepo.NewMongoCustomerRepo

// Re-export the OperatorRepository interface and constructor.
type OperatorRepository = operatorRepo.OperatorRepository

var NewMongoOperatorRepo = operatorRepo.NewMongoOperatorRepo
