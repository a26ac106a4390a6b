package research

// mockCorpus is the offline set of Malaysian authorities served when the
// live source is disabled or unreachable. Headnotes are kept short and
// bilingual; the corpus only needs to keep a demo or degraded run useful.
var mockCorpus = []CaseResult{
	{
		Citation:   "[2019] 6 MLJ 15",
		Title:      "Cubic Electronics Sdn Bhd v Mars Telecommunications Sdn Bhd",
		Court:      "Federal Court of Malaysia",
		Year:       2019,
		HeadnoteMS: "Deposit dan ganti rugi jangkaan dalam kontrak jual beli; peruntukan seksyen 75 Akta Kontrak 1950.",
		HeadnoteEN: "Deposits and liquidated damages in a sale contract; operation of section 75 of the Contracts Act 1950.",
		Binding:    true,
	},
	{
		Citation:   "[2017] 4 MLJ 697",
		Title:      "Letchumanan Chettiar Alagappan v Secure Plantation Sdn Bhd",
		Court:      "Federal Court of Malaysia",
		Year:       2017,
		HeadnoteMS: "Beban pembuktian dalam tuntutan sivil; perbezaan antara beban undang-undang dan beban keterangan.",
		HeadnoteEN: "Burden of proof in civil claims; the distinction between the legal and the evidential burden.",
		Binding:    true,
	},
	{
		Citation:   "[2014] 2 MLJ 749",
		Title:      "Tenaga Nasional Bhd v Kamarstone Sdn Bhd",
		Court:      "Federal Court of Malaysia",
		Year:       2014,
		HeadnoteMS: "Had masa bagi tuntutan kontrak; bila kausa tindakan terakru untuk bayaran berkala.",
		HeadnoteEN: "Limitation for contract claims; when the cause of action accrues for periodic payments.",
		Binding:    true,
	},
	{
		Citation:   "[2010] 1 MLJ 597",
		Title:      "Berjaya Times Square Sdn Bhd v M Concept Sdn Bhd",
		Court:      "Federal Court of Malaysia",
		Year:       2010,
		HeadnoteMS: "Pelepasan kontrak atas kemungkiran; hak pembeli untuk menamatkan dan menuntut wang dibayar.",
		HeadnoteEN: "Discharge of contract for breach; the purchaser's right to terminate and recover sums paid.",
		Binding:    true,
	},
	{
		Citation:   "[2005] 2 MLJ 1",
		Title:      "Gan Yook Chin v Lee Ing Chin",
		Court:      "Federal Court of Malaysia",
		Year:       2005,
		HeadnoteMS: "Skop campur tangan rayuan terhadap penemuan fakta; ujian penilaian nyata.",
		HeadnoteEN: "Scope of appellate interference with findings of fact; the plainly wrong test.",
		Binding:    true,
	},
	{
		Citation:   "[2003] 1 MLJ 273",
		Title:      "Sri Inai (Pulau Pinang) Sdn Bhd v Yong Yit Swee",
		Court:      "Court of Appeal of Malaysia",
		Year:       2003,
		HeadnoteMS: "Kewajipan berjaga-jaga penghuni premis; kebakaran di asrama dan liabiliti kecuaian.",
		HeadnoteEN: "Occupier's duty of care; hostel fire and liability in negligence.",
		Binding:    true,
	},
	{
		Citation:   "[1995] 3 MLJ 395",
		Title:      "Sivalingam a/l Periasamy v Periasamy",
		Court:      "Court of Appeal of Malaysia",
		Year:       1995,
		HeadnoteMS: "Campur tangan rayuan; penghakiman berat sebelah terhadap keterangan yang tidak dicabar.",
		HeadnoteEN: "Appellate intervention; judgment against the weight of unchallenged evidence.",
		Binding:    true,
	},
	{
		Citation:   "[2013] 9 MLJ 729",
		Title:      "Mahmood bin Ooyub v Li Chee Loong",
		Court:      "High Court of Malaya",
		Year:       2013,
		HeadnoteMS: "Tuntutan wang didahulukan; keterangan dokumen dan inferens daripada rekod pembayaran.",
		HeadnoteEN: "Friendly loan recovery; documentary proof and inferences from the payment record.",
		Binding:    false,
	},
	{
		Citation:   "[2020] 11 MLJ 343",
		Title:      "Dream Property Sdn Bhd v Atlas Housing Sdn Bhd",
		Court:      "High Court of Malaya",
		Year:       2020,
		HeadnoteMS: "Pengayaan tidak wajar dan pemulangan; faedah diterima atas perbelanjaan plaintif.",
		HeadnoteEN: "Unjust enrichment and restitution; benefit received at the plaintiff's expense.",
		Binding:    false,
	},
}

// MockResults returns the corpus ranked for the query, tagged mock. It is
// never empty for a non-empty corpus, whatever the query says.
func MockResults(q Query) []CaseResult {
	out := make([]CaseResult, len(mockCorpus))
	copy(out, mockCorpus)
	for i := range out {
		out[i].Provenance = ProvenanceMock
	}
	return Rank(q, out)
}
