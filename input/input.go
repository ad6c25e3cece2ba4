package input

import (
	_ "github.com/turnon/tasks/input/tasklistinput"
)
