// Package attachments stages files a customer attaches to an order. Each
// candidate is checked against the accepted type list, the per-file and total
// size caps, the file count cap, and the names already staged. Accepted files
// get a stable id; images also get a preview handle that is released when the
// file is removed or the collector is closed.
package attachments
