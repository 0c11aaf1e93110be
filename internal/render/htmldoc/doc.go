// Package htmldoc renders a processed document as a flowing HTML5 document.
//
// The output is self-contained: styles are inlined in a <style> element
// built from the base stylesheet and the theme, and code blocks carry inline
// highlighting styles. Each page of the document becomes a
// <section class="page"> so that printing honors explicit page breaks.
package htmldoc
