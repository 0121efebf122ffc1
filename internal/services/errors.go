package services

import "errors"

// Common service errors
var (
	ErrNotFound                  = errors.New("registro no encontrado")
	ErrInvalidPassword           = errors.New("contraseña inválida")
	ErrUnauthorized              = errors.New("no autorizado")
	ErrInvalidState              = errors.New("transición de estado inválida")
	ErrDuplicate                 = errors.New("registro duplicado")
	ErrRateUnavailable           = errors.New("no existe tasa de cambio para la moneda")
	ErrInvalidContractState      = errors.New("el contrato no cubre el período o no está abierto")
	ErrBatchStateViolation       = errors.New("el lote no permite la operación en su estado actual")
	ErrPayslipRecomputeForbidden = errors.New("el recibo confirmado no puede recalcularse")
)
