package danger

const (
	CategoryProcessExec     = "process_exec"
	CategoryDynamicEval     = "dynamic_eval"
	CategoryFSDestruction   = "fs_destruction"
	CategoryNetwork         = "network"
	CategoryDeserialization = "deserialization"
)

type rule struct {
	ID       string
	Category string
	Pattern  string
}

// ruleDefs is the fixed catalogue of security-sensitive call patterns. These
// flag content regardless of whether it scores as code; matching is a binary
// tripwire layered on top of the wrap decision, never gating it.
func ruleDefs() []rule {
	return []rule{
		{ID: "os_system", Category: CategoryProcessExec, Pattern: `\bos\.system\s*\(`},
		{ID: "subprocess_call", Category: CategoryProcessExec, Pattern: `\bsubprocess\.(?:run|call|popen)`},
		{ID: "eval_call", Category: CategoryDynamicEval, Pattern: `\beval\s*\(`},
		{ID: "exec_call", Category: CategoryDynamicEval, Pattern: `\bexec\s*\(`},
		{ID: "shutil_rmtree", Category: CategoryFSDestruction, Pattern: `\bshutil\.rmtree\s*\(`},
		{ID: "rm_rf", Category: CategoryFSDestruction, Pattern: `rm\s+-rf`},
		{ID: "urllib_request", Category: CategoryNetwork, Pattern: `\burllib\.(?:request|urlopen)`},
		{ID: "requests_call", Category: CategoryNetwork, Pattern: `\brequests?\.[a-z_]+`},
		{ID: "socket_call", Category: CategoryNetwork, Pattern: `\bsocket\.[a-z_]+`},
		{ID: "pickle_load", Category: CategoryDeserialization, Pattern: `\bpickle\.(?:load|loads)`},
		{ID: "marshal_load", Category: CategoryDeserialization, Pattern: `\bmarshal\.(?:load|loads)`},
	}
}
