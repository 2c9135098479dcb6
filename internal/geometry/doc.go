// Package geometry places the page boxes of a preflight report on the
// diagram page and projects issue locations into render space.
//
// All inputs are millimetres in the bottom-left-origin space of the analysed
// page. Resolve turns the three page boxes into a PageGeometry holding each
// box's offset from the media box and the page-fit scale ratio. Project then
// maps issue rectangles into the top-left-origin space of the A4 report page,
// already scaled and shifted by the page margin.
package geometry
