package availability

import "github.com/BruksfildServices01/makeup-scheduler/internal/httperr"

func isNotFound(err error) bool {
	return httperr.IsKind(err, httperr.KindNotFound)
}
