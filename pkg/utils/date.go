package utils

import "time"

// Yesterday retorna o dia anterior ao instante informado, truncado para a
// meia-noite em UTC.
func Yesterday(now time.Time) time.Time {
	y := now.AddDate(0, 0, -1)
	return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC)
}

