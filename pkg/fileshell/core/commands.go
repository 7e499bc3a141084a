package core

// Command is the closed set of verbs the shell understands.
type Command int

const (
	CommandUnknown Command = iota
	CommandUp
	CommandCd
	CommandLs
	CommandCat
	CommandAdd
	CommandRn
	CommandCp
	CommandMv
	CommandRm
	CommandHash
	CommandCompress
	CommandDecompress
	CommandOS
	CommandExit
)

var commandNames = map[Command]string{
	CommandUp:         "up",
	CommandCd:         "cd",
	CommandLs:         "ls",
	CommandCat:        "cat",
	CommandAdd:        "add",
	CommandRn:         "rn",
	CommandCp:         "cp",
	CommandMv:         "mv",
	CommandRm:         "rm",
	CommandHash:       "hash",
	CommandCompress:   "compress",
	CommandDecompress: "decompress",
	CommandOS:         "os",
	CommandExit:       ".exit",
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, len(commandNames))
	for c, name := range commandNames {
		m[name] = c
	}
	return m
}()

// String returns the name typed at the prompt.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCommand maps a typed name to its Command. Matching is case-sensitive.
func ParseCommand(name string) (Command, bool) {
	c, ok := commandsByName[name]
	return c, ok
}

// Operations returns every command that needs a registered handler, in
// declaration order. CommandExit is handled by the shell loop itself.
func Operations() []Command {
	ops := make([]Command, 0, len(commandNames)-1)
	for c := CommandUp; c < CommandExit; c++ {
		ops = append(ops, c)
	}
	return ops
}
