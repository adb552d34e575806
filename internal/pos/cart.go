package pos

import "pantry-be/internal/product"

// Line is one cart row. A line is identified by product and unit.
type Line struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UOM       string  `json:"uom"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	Image     string  `json:"image,omitempty"`
}

func (l Line) Amount() float64 {
	return l.Price * float64(l.Qty)
}

// Cart holds a counter sale being rung up. The zero value is ready to use.
type Cart struct {
	lines []Line
}

func (c *Cart) find(productID, uom string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID && c.lines[i].UOM == uom {
			return i
		}
	}
	return -1
}

// Add puts one unit of p on the cart, incrementing the line when the same
// product and unit is already there. Products without variants are sold in
// product.DefaultUOM.
func (c *Cart) Add(p *product.Product, uom string) error {
	return c.AddQty(p, uom, 1)
}

func (c *Cart) AddQty(p *product.Product, uom string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQty
	}
	if !p.IsActive {
		return ErrProductUnavailable
	}
	if p.HasVariants() && uom == "" {
		return ErrVariantSelectionRequired
	}
	if !p.HasVariants() {
		uom = product.DefaultUOM
	}

	price, err := p.EffectivePrice(uom)
	if err != nil {
		return err
	}

	if i := c.find(p.ID, uom); i >= 0 {
		c.lines[i].Qty += qty
		return nil
	}

	line := Line{
		ProductID: p.ID,
		Name:      p.Name,
		UOM:       uom,
		Price:     price,
		Qty:       qty,
	}
	if p.ImageURL != nil {
		line.Image = *p.ImageURL
	}
	c.lines = append(c.lines, line)
	return nil
}

// SetQty overwrites a line's quantity. A quantity of zero or less removes it.
func (c *Cart) SetQty(productID, uom string, qty int) error {
	i := c.find(productID, uom)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return nil
	}
	c.lines[i].Qty = qty
	return nil
}

func (c *Cart) Remove(productID, uom string) error {
	return c.SetQty(productID, uom, 0)
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart rows in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}
