/*Package interval loads reference-coordinate repeat annotations from
  BED-like files.

  Two views are provided.  BEDUnion merges overlapping intervals per contig
  and answers point queries (is reference position p inside a repeat?); this
  is what pointwise mask projection needs.  LoadEntries keeps every interval
  exactly as written, in file order, since interval-batch projection paints
  one signal block per annotated interval.

  Coordinates are zero-based and half-open unless OneBasedInput is set.  Every
  position must fit in a PosType.
*/
package interval
