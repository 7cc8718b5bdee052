package dice

import "go.uber.org/zap"

// Roller rolls against a Source and records each result at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger.Named("dice")}
}

// RollExpr rolls a damage expression such as "2d6+3".
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	res := Roll(e, r.src)
	r.record("damage", res)
	return res, nil
}

// Check rolls d20 + bonus for a labelled check such as "save:wisdom".
func (r *Roller) Check(label string, bonus int, mode Mode) RollResult {
	res := D20(bonus, mode, r.src)
	r.record(label, res, zap.Stringer("mode", mode))
	return res
}

func (r *Roller) record(label string, res RollResult, extra ...zap.Field) {
	if ce := r.logger.Check(zap.DebugLevel, "dice roll"); ce != nil {
		ce.Write(append([]zap.Field{
			zap.String("label", label),
			zap.String("expression", res.Expression),
			zap.Ints("dice", res.Dice),
			zap.Ints("dropped", res.Dropped),
			zap.Int("modifier", res.Modifier),
			zap.Int("total", res.Total()),
		}, extra...)...)
	}
}
