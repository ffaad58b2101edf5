package core

// DecodeLocated reads every item of the layout at its absolute offset in data.
// It is a pure function of its inputs and safe to call from many goroutines
// sharing one layout.
func DecodeLocated(layout *LocatedLayout, data []byte) ([]Point, error) {
	return DecodeLocatedInto(make([]Point, 0, len(layout.Items)), layout, data)
}

// DecodeLocatedInto appends the points to dst so a worker can reuse its buffer.
func DecodeLocatedInto(dst []Point, layout *LocatedLayout, data []byte) ([]Point, error) {
	ctx := Context{Data: data}
	for _, item := range layout.Items {
		if err := ctx.Seek(int(item.Offset)); err != nil {
			return dst, fieldError(item.PathString(), err)
		}
		v, err := item.Type.Decode(&ctx)
		if err != nil {
			return dst, fieldError(item.PathString(), err)
		}
		dst = append(dst, Point{Name: item.FieldName(), Value: v})
	}
	return dst, nil
}
