package ethereum

// MarketplaceABI — ABI контракта маркетплейса (только используемые клиентом методы).
const MarketplaceABI = `[
  {
    "inputs": [],
    "name": "itemCount",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "name": "items",
    "outputs": [
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "uint256", "name": "price", "type": "uint256"},
      {"internalType": "bool", "name": "isAuction", "type": "bool"},
      {"internalType": "uint256", "name": "auctionDuration", "type": "uint256"},
      {"internalType": "bool", "name": "isRent", "type": "bool"},
      {"internalType": "uint256", "name": "rentalPrice", "type": "uint256"},
      {"internalType": "uint256", "name": "rentalDuration", "type": "uint256"},
      {"internalType": "bool", "name": "useLogistics", "type": "bool"},
      {"internalType": "uint256", "name": "logisticsPrice", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "string", "name": "_name", "type": "string"},
      {"internalType": "uint256", "name": "_price", "type": "uint256"},
      {"internalType": "bool", "name": "_isAuction", "type": "bool"},
      {"internalType": "uint256", "name": "_auctionDuration", "type": "uint256"},
      {"internalType": "bool", "name": "_isRent", "type": "bool"},
      {"internalType": "uint256", "name": "_rentalPrice", "type": "uint256"},
      {"internalType": "uint256", "name": "_rentalDuration", "type": "uint256"},
      {"internalType": "bool", "name": "_useLogistics", "type": "bool"},
      {"internalType": "uint256", "name": "_logisticsPrice", "type": "uint256"}
    ],
    "name": "listItem",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`
