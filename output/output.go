package output

import (
	_ "github.com/turnon/tasks/output/clickhousebatch"
	_ "github.com/turnon/tasks/output/stdoutvertical"
	_ "github.com/turnon/tasks/output/tasklistoutput"
)
