package processor

import (
	_ "github.com/turnon/tasks/processor/unwind"
)
