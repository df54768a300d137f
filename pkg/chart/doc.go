// Package chart paints the panel's pie chart onto a canvas.
//
// A [Canvas] is a fixed-size raster surface that hosts at most one live
// [Chart]. Creating a second chart on an occupied canvas fails with
// [ErrCanvasInUse]; the previous chart must be destroyed first.
//
// Painting is asynchronous. [New] returns immediately and the chart closes
// its [Chart.Done] channel once the first frame is on the canvas, at which
// point [Chart.ToBase64Image] yields the finished picture:
//
//	canvas := chart.NewCanvas(900, 400)
//	c, err := chart.New(ctx, canvas, chart.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer c.Destroy()
//	<-c.Done()
//	src, err := c.ToBase64Image() // "data:image/png;base64,..."
//
// The pie itself is drawn by go-chart; the canvas composites it with a legend
// rendered by gg.
package chart
