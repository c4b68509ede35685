package sqlast

// Visitor renders a dialect-neutral sqlast.Node tree into dialect-specific
// DDL text. renderer.Renderer is the implementation; the packages under
// renderer/dialects supply the per-dialect renderer.Dialect it is built with.
type Visitor interface {
	VisitCreateTable(n *CreateTable) error
	VisitDropTable(n *DropTable) error
	VisitRenameTable(n *RenameTable) error
	VisitAlterTable(n *AlterTable) error
	VisitCreateEnum(n *CreateEnum) error
	VisitDropEnum(n *DropEnum) error
	VisitCreateIndex(n *CreateIndex) error
	VisitDropIndex(n *DropIndex) error
	VisitAddForeignKey(n *AddForeignKey) error
	VisitDropForeignKey(n *DropForeignKey) error
}

// Render visits every node in order and returns the accumulated error, if
// any visit fails. The Visitor holds its own output buffer; Render is the
// uniform entry point renderer.Render uses for every dialect.
func Render(nodes []Node, v Visitor) error {
	for _, n := range nodes {
		if err := n.Accept(v); err != nil {
			return err
		}
	}
	return nil
}
