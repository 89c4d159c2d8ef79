package chart

type RendererOpt func(*Renderer)

func WithSize(width, height int) RendererOpt {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

func WithTitle(title string) RendererOpt {
	return func(r *Renderer) {
		r.title = title
	}
}
