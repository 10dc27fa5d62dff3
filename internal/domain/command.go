package domain

// CommandKind - тип команды хода.
type CommandKind uint8

const (
	CommandMove CommandKind = iota + 1
	CommandShoot
)

func (k CommandKind) String() string {
	switch k {
	case CommandMove:
		return "try_move"
	case CommandShoot:
		return "try_shoot"
	}
	return "unknown"
}

// Command - запрос одного актора на текущий ход.
// Actor - живой указатель: если предыдущая команда того же хода уже
// сдвинула объект, разрешение идёт от его новой клетки.
type Command struct {
	Kind  CommandKind
	Actor *Object
	Dir   Direction
}

func TryMove(actor *Object, dir Direction) Command {
	return Command{Kind: CommandMove, Actor: actor, Dir: dir}
}

func TryShoot(actor *Object, dir Direction) Command {
	return Command{Kind: CommandShoot, Actor: actor, Dir: dir}
}
