package spawner

import "errors"

var ErrLimitReached = errors.New("spawner: live crate limit reached")
