package handlers

import (
	"net/http"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/logger"
)

var statusByKind = map[apperror.Kind]int{
	apperror.KindValidation:  http.StatusUnprocessableEntity,
	apperror.KindComputation: http.StatusUnprocessableEntity,
	apperror.KindNotFound:    http.StatusNotFound,
	apperror.KindConflict:    http.StatusConflict,
}

// writeServiceError переводит вид ошибки в HTTP статус. Непубличные ошибки логируются,
// а клиент получает internalMessage.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, internalMessage string) {
	kind := apperror.KindOf(err)
	if !kind.Public() {
		if log != nil {
			log.WithError(err).WithField("kind", kind).Error(internalMessage)
		}
		writeErrorResponse(w, http.StatusInternalServerError, internalMessage)
		return
	}

	if fields := apperror.FieldsOf(err); kind == apperror.KindValidation && len(fields) > 0 {
		writeValidationErrors(w, err.Error(), fields)
		return
	}
	writeErrorResponse(w, statusByKind[kind], err.Error())
}
